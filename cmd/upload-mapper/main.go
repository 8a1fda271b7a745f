// Package main provides the CLI entrypoint for upload-mapper.
//
// upload-mapper maps spreadsheet columns onto a collections database schema:
//   - automap guesses a mapping for the headers of a CSV or XLSX file
//   - suggest ranks candidate fields for individual headers
//   - picklist shows the choices for one line of a saved mapping
//   - validate reports problems in a saved mapping
//   - plan turns a saved mapping into an upload plan
//   - inspect turns an upload plan back into an editable mapping
package main

func main() {
	Execute()
}
