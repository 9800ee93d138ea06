// Package genemap provides embedded ENSEMBL gene maps.
//
// Each file is a CSV gene map with an ENSEMBL_gene column holding the
// identifiers recognized for one organism. The embedded maps are the
// default catalog source; deployments can point the validator at a
// directory of newer maps instead.
//
// Usage:
//
//	f, err := genemap.Open(genemap.Files.HomoSapiens)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package genemap

import (
	"embed"
	"io/fs"
	"path"
)

// Embedded gene map files, one per organism.
//
//go:embed data/*.csv
var geneMaps embed.FS

// Files contains the standard gene map file names.
var Files = struct {
	HomoSapiens string
	MusMusculus string
}{
	HomoSapiens: "homo_sapiens.csv",
	MusMusculus: "mus_musculus.csv",
}

// Open opens an embedded gene map by file name.
func Open(name string) (fs.File, error) {
	return geneMaps.Open(path.Join("data", name))
}

// Has reports whether an embedded gene map with the given name exists.
func Has(name string) bool {
	f, err := Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
