package catalog

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type CityPlaces struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type CountryPlaces struct {
	Country string       `json:"country"`
	Count   int          `json:"count"`
	Cities  []CityPlaces `json:"cities"`
}

type UnknownPlaces struct {
	Count int `json:"count"`
}

type PlacesSummary struct {
	Countries []CountryPlaces `json:"countries"`
	Unknown   UnknownPlaces   `json:"unknown"`
}

// Places groups asset counts by country and city, both sorted with Russian
// collation.
func (s *Service) Places(ctx context.Context) (PlacesSummary, error) {
	rows, unknown, err := s.repo.Places(ctx)
	if err != nil {
		return PlacesSummary{}, err
	}
	return groupPlaces(rows, unknown), nil
}

func groupPlaces(rows []PlaceCount, unknown int) PlacesSummary {
	byCountry := make(map[string]*CountryPlaces)
	var order []string
	for _, r := range rows {
		c, ok := byCountry[r.Country]
		if !ok {
			c = &CountryPlaces{Country: r.Country}
			byCountry[r.Country] = c
			order = append(order, r.Country)
		}
		c.Count += r.Count
		c.Cities = append(c.Cities, CityPlaces{City: r.City, Count: r.Count})
	}

	col := collate.New(language.Russian)
	sort.SliceStable(order, func(i, j int) bool {
		return col.CompareString(order[i], order[j]) < 0
	})

	out := PlacesSummary{Countries: make([]CountryPlaces, 0, len(order)), Unknown: UnknownPlaces{Count: unknown}}
	for _, name := range order {
		c := byCountry[name]
		sort.SliceStable(c.Cities, func(i, j int) bool {
			return col.CompareString(c.Cities[i].City, c.Cities[j].City) < 0
		})
		out.Countries = append(out.Countries, *c)
	}
	return out
}
