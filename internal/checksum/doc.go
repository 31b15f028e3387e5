// Package checksum hashes file content so that the same workbook saved under
// two names is recognized before it is loaded twice.
package checksum
