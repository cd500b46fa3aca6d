package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zalepa/epimap/geo"
)

// Regions implements the "regions" subcommand: print the coordinate table,
// including any EXTRA_REGION entries.
func Regions(args []string) {
	s := newSession()

	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: epimap regions\n\nList the regions that can be placed on the map.\n")
	}
	fs.Parse(args)

	table, err := s.cfg.Regions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	writeRegions(os.Stdout, table)
}

func writeRegions(w io.Writer, table geo.Table) {
	names := table.Names()
	nameW := maxWidth(names, 6)
	fmt.Fprintf(w, "%s  %8s  %9s  %s\n", padRight("Region", nameW), "Lat", "Lon", "Geohash")
	for _, name := range names {
		c, _ := table.Lookup(name)
		fmt.Fprintf(w, "%s  %8.4f  %9.4f  %s\n", padRight(name, nameW), c.Lat, c.Lon, geo.Geohash(c))
	}
	fmt.Fprintf(w, "\n%d regions, map center %.1f, %.1f\n", table.Len(), geo.Center.Lat, geo.Center.Lon)
}
