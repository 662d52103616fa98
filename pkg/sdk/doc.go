// Package registry embeds the catalog registry in Go programs: catalog index
// lifecycle, layer indexing and faceted search, talking to the search engine
// directly instead of through the HTTP API.
//
//	client, _ := registry.New(ctx, registry.WithSearchURL("http://localhost:9200"))
//	_, _ = client.Catalogs().Create(ctx, "hypermap")
//	_, _ = client.Catalogs().Insert(ctx, "hypermap", layer)
//	resp, _ := client.Search("hypermap").
//	    Text("parks").
//	    Between(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}).
//	    TimeFacet(10, "P1Y").
//	    Limit(20).
//	    Do(ctx)
package registry
