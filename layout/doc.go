// Package layout indexes an on-disk BIDS dataset in SQLite and answers
// entity queries against it.
//
// [Index.Build] walks a dataset through a billy.Filesystem and records every
// file whose name follows the BIDS pattern
//
//	sub-<label>[_<key>-<value>...]_<suffix><extension>
//
// together with its datatype directory. [Index.Get] selects files by entity
// values, [Index.Extract] turns the indexed dataset back into a skeleton
// that reproduces its structure.
//
// The database is a modernc.org/sqlite connection, so ":memory:" works
// without cgo.
package layout
