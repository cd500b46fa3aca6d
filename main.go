package main

import (
	"fmt"
	"os"

	"github.com/zalepa/epimap/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "map":
		cmd.Map(os.Args[2:])
	case "predict":
		cmd.Predict(os.Args[2:])
	case "web":
		cmd.Web(os.Args[2:])
	case "export":
		cmd.Export(os.Args[2:])
	case "fetch":
		cmd.Fetch(os.Args[2:])
	case "regions":
		cmd.Regions(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: epimap <command>

Commands:
  map        Rank regions for one metric and render the marker map
  predict    Project metrics for one or two regions to a future year
  web        Serve the interactive dashboard
  export     Write the prepared dataset to CSV, JSON, or XLSX
  fetch      Download the current and past datasets
  regions    List mappable regions and their coordinates
`)
}
