// usdzdump loads a USD file in any of the three formats this module
// understands (textual USDA, binary Crate/USDC, or zip-packed USDZ),
// composes it into a Stage and dumps the result back out as USDA text
// on stdout. Format is autodetected by sniffing the file's leading
// bytes rather than trusting its extension, per spec §6's
// "load_usda | load_usdc | load_usdz" entry points sharing one Layer
// result type.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lighttransport/tinyusdz-go/pkg/crate"
	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/usda"
	"github.com/lighttransport/tinyusdz-go/pkg/usdz"
)

const (
	usageFirstLine = "Usage: %s [OPTION...] FILE"
	usage          = usageFirstLine + `
Dump a USDA, USDC or USDZ file's composed stage as USDA text.

Options:
`
)

var flattenOnly bool

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.BoolVar(&flattenOnly, "flatten", false, "compose without following external sublayer/reference/payload arcs")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "error: exactly one FILE argument required.\n%s\n", usageFirstLine)
		flag.Usage()
		os.Exit(1)
	}

	fname := flag.Arg(0)
	data, err := os.ReadFile(fname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := loadStage(fname, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(s.ExportToString())
}

// loadStage sniffs data's magic bytes to pick a loader: ZIP's "PK",
// Crate's "PXR-USDC", or USDA text as the fallback.
func loadStage(fname string, data []byte) (*stage.Stage, error) {
	switch {
	case isZip(data):
		return usdz.LoadStage(data)
	case isCrate(data):
		r, err := crate.NewReader(data)
		if err != nil {
			return nil, err
		}
		src, err := stage.FromCrate(r)
		if err != nil {
			return nil, err
		}
		return composeRoot(src)
	default:
		layer, err := usda.Parse(fname, string(data))
		if err != nil {
			return nil, err
		}
		return composeRoot(stage.FromUSDA(layer))
	}
}

func composeRoot(src *stage.SourceLayer) (*stage.Stage, error) {
	if flattenOnly {
		return stage.Compose(src, nil)
	}
	return stage.Compose(src, localResolver{})
}

func isZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04
}

func isCrate(data []byte) bool {
	return len(data) >= 8 && string(data[0:8]) == "PXR-USDC"
}

// localResolver resolves sublayer/reference/payload identifiers
// against the current working directory, for dumping a multi-file USD
// project tree from the command line.
type localResolver struct{}

func (localResolver) Resolve(identifier string) (string, error) { return identifier, nil }

func (localResolver) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}
