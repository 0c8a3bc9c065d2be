/*
Package sqldataset reads datasets from SQL database tables holding one
integer column per attribute and one for the label.

Adapters for specific databases live in the subpackages.
*/
package sqldataset
