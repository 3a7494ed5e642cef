// cmd/schemacheck validates the embedded resource descriptors.
//
// It leverages CUE's built-in validation: every descriptor is unified
// with the #Resource definition and checked for concreteness, so a
// missing label, an unknown field kind, or a malformed column type
// fails here instead of at server startup.
package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/KevinAshley/webparts/internal/resource"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("schemacheck: ")

	defs, err := resource.Load()
	if err != nil {
		log.Fatalf("validation failed: %v", err)
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := defs[name]
		fmt.Printf("%-10s %d fields, %d columns\n", name, len(def.Fields), len(def.Columns))
	}
	fmt.Printf("%d resource descriptors validate.\n", len(defs))
}
