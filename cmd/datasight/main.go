// Command datasight inspects CSV and Excel files from the terminal: it runs
// the same ingestion, analysis and view pipeline as the HTTP service.
package main

func main() {
	Execute()
}
