package anns_test

import (
	"fmt"
	"strings"

	"github.com/pathomics/annio/anns"
)

// ExampleParser_Parse walks a small export through a full session:
// one segmentation row, one detection row, one empty row.
func ExampleParser_Parse() {
	export := strings.Join([]string{
		"ImageID\tImage Name\tBy\tQuestion\tAnswer",
		"42\tslide_a.svs\tann@lab.org\ttumor\t[{\"type\":\"polygon\",\"points\":[{\"x\":0,\"y\":0},{\"x\":4,\"y\":0},{\"x\":0,\"y\":4}]}]",
		"42\tslide_a.svs\tann@lab.org\tlymphocytes\t[{\"x\":1,\"y\":2},{\"x\":3,\"y\":4}]",
		"43\tslide_b.svs\tann@lab.org\ttumor\t[]",
	}, "\n")

	p := anns.NewParser(anns.DefaultOptions())
	res, err := p.Parse(strings.NewReader(export))
	if err != nil {
		fmt.Println("fatal:", err)
		return
	}

	fmt.Println("accepted:", res.Counters.Accepted)
	fmt.Println("empty:", res.Counters.Empty)
	for _, rec := range res.Records {
		fmt.Printf("%s/%s: %d shape(s)\n", rec.ImageID, rec.Label, len(rec.Shapes))
	}

	// Output:
	// accepted: 2
	// empty: 1
	// 42/tumor: 1 shape(s)
	// 42/lymphocytes: 1 shape(s)
}
