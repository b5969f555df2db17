package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/kv"
)

var (
	routesFile = flag.String("routes", "routes_cache.json", "precomputed routes json artifact")
	outputDir  = flag.String("out", "./data/routes_cache", "route cache snapshot directory")
)

type routeEntry struct {
	Origin      datastructure.Coordinate           `json:"origin"`
	Destination datastructure.Coordinate           `json:"destination"`
	Avoid       datastructure.AvoidancePreferences `json:"avoid"`
	Path        []datastructure.RoutePoint         `json:"path"`
}

func main() {
	flag.Parse()

	log.Printf("reading routes artifact %s", *routesFile)
	raw, err := os.ReadFile(*routesFile)
	if err != nil {
		log.Fatal(err)
	}

	var entries []routeEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal(err)
	}

	cache, err := kv.OpenRouteCache(*outputDir)
	if err != nil {
		log.Fatal(err)
	}
	defer cache.Close()

	stored := 0
	for i, entry := range entries {
		if len(entry.Path) == 0 {
			log.Printf("skipping route %d: empty path", i)
			continue
		}
		err := cache.Put(entry.Origin, entry.Destination, datastructure.CachedRoute{
			Points: entry.Path,
			Avoid:  entry.Avoid,
		})
		if err != nil {
			log.Fatal(err)
		}
		stored++
	}

	fmt.Printf("\nroute cache snapshot ready: %d routes stored in %s\n", stored, *outputDir)
}
