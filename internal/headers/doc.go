// Package headers reads the header row of an uploaded spreadsheet.
//
// CSV and TSV files may be UTF-8 (with or without a byte order mark), UTF-16
// with a byte order mark, or any encoding named with WithEncoding. XLSX files
// are read from their first sheet unless WithSheet names another.
package headers
