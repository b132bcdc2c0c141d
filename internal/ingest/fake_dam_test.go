package ingest

import (
	"context"
	"strconv"
	"sync"

	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
)

type listCall struct {
	folder     string
	kind       cloudinary.ResourceKind
	maxResults int
	cursor     string
}

// fakeDAM serves a fixed folder tree with offset-based page cursors.
type fakeDAM struct {
	mu        sync.Mutex
	cloud     string
	children  map[string][]string
	resources map[string]map[cloudinary.ResourceKind][]cloudinary.Resource
	details   map[string]*cloudinary.ResourceDetails
	listErr   map[string]error
	subErr    map[string]error
	calls     []listCall
	// onList runs before each listing is answered.
	onList func(folder string)
}

func newFakeDAM() *fakeDAM {
	return &fakeDAM{
		cloud:     "demo",
		children:  map[string][]string{},
		resources: map[string]map[cloudinary.ResourceKind][]cloudinary.Resource{},
		details:   map[string]*cloudinary.ResourceDetails{},
		listErr:   map[string]error{},
		subErr:    map[string]error{},
	}
}

func (f *fakeDAM) add(folder string, kind cloudinary.ResourceKind, res ...cloudinary.Resource) {
	if f.resources[folder] == nil {
		f.resources[folder] = map[cloudinary.ResourceKind][]cloudinary.Resource{}
	}
	for _, r := range res {
		if r.AssetFolder == "" {
			r.AssetFolder = folder
		}
		if r.ResourceType == "" {
			r.ResourceType = string(kind)
		}
		f.resources[folder][kind] = append(f.resources[folder][kind], r)
	}
}

func (f *fakeDAM) CloudName() string { return f.cloud }

func (f *fakeDAM) ListResources(ctx context.Context, folder string, kind cloudinary.ResourceKind, maxResults int, cursor string) (*cloudinary.ResourcePage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{folder: folder, kind: kind, maxResults: maxResults, cursor: cursor})
	onList := f.onList
	f.mu.Unlock()
	if onList != nil {
		onList(folder)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.listErr[folder+"|"+string(kind)]; err != nil {
		return nil, err
	}

	all := f.resources[folder][kind]
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := min(start+maxResults, len(all))
	page := &cloudinary.ResourcePage{
		Resources:  append([]cloudinary.Resource(nil), all[start:end]...),
		TotalCount: len(all),
	}
	if end < len(all) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeDAM) ListSubfolders(_ context.Context, folder string) ([]string, error) {
	if err := f.subErr[folder]; err != nil {
		return nil, err
	}
	return f.children[folder], nil
}

func (f *fakeDAM) GetResource(_ context.Context, publicID string, _ cloudinary.ResourceKind) (*cloudinary.ResourceDetails, error) {
	if d, ok := f.details[publicID]; ok {
		return d, nil
	}
	return nil, &cloudinary.APIError{Status: 404, Message: "Resource not found - " + publicID}
}

func (f *fakeDAM) listCalls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.calls...)
}
