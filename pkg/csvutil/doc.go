// Package csvutil reads delimiter-separated text into header-keyed rows.
//
// Three dialects are predefined: Excel (comma), ExcelTab (tab) and
// ExcelSpace (single space). Rows follow dictionary-reader semantics: the
// first record names the columns, short records are padded with empty
// strings and surplus values are collected under RestKey.
package csvutil
