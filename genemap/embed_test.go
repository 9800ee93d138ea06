package genemap

import (
	"bufio"
	"strings"
	"testing"
)

func TestOpen(t *testing.T) {
	for _, name := range []string{Files.HomoSapiens, Files.MusMusculus} {
		f, err := Open(name)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", name, err)
		}

		scanner := bufio.NewScanner(f)
		if !scanner.Scan() {
			t.Fatalf("%s is empty", name)
		}
		if header := scanner.Text(); !strings.Contains(header, "ENSEMBL_gene") {
			t.Errorf("%s header = %q; want an ENSEMBL_gene column", name, header)
		}

		rows := 0
		for scanner.Scan() {
			rows++
		}
		if rows == 0 {
			t.Errorf("%s has no data rows", name)
		}
		f.Close()
	}
}

func TestHas(t *testing.T) {
	if !Has(Files.HomoSapiens) {
		t.Error("Has(homo_sapiens.csv) = false")
	}
	if Has("danio_rerio.csv") {
		t.Error("Has(danio_rerio.csv) = true")
	}
}
