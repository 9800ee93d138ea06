// Command capval validates AnnData .h5ad files against the CAP upload
// schema.
package main

func main() {
	Execute()
}
