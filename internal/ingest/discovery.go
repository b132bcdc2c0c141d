package ingest

import "context"

// FolderLister lists the direct children of a folder as full paths.
type FolderLister interface {
	ListSubfolders(ctx context.Context, folder string) ([]string, error)
}

// DiscoverFolders walks the folder tree under root breadth-first and returns
// at most limit folders, root first. Each path is visited once even when the
// provider reports it under several parents. A failed child listing is passed
// to onErr and the walk continues with the rest of the queue.
func DiscoverFolders(ctx context.Context, lister FolderLister, root string, limit int, onErr func(folder string, err error)) []string {
	root = normalizeFolder(root)
	if root == "" || limit < 1 {
		return nil
	}

	queue := []string{root}
	seen := map[string]bool{root: true}
	var out []string

	for len(queue) > 0 && len(out) < limit {
		if ctx.Err() != nil {
			break
		}
		folder := queue[0]
		queue = queue[1:]
		out = append(out, folder)
		if len(out) >= limit {
			break
		}

		children, err := lister.ListSubfolders(ctx, folder)
		if err != nil {
			if onErr != nil {
				onErr(folder, err)
			}
			continue
		}
		for _, child := range children {
			child = normalizeFolder(child)
			if child == "" || seen[child] {
				continue
			}
			seen[child] = true
			queue = append(queue, child)
		}
	}
	return out
}
