// Package registry records a simulated dataset in an external
// version-controlled data store.
//
// A [Registrar] receives the output directory, the top-level entries that a
// simulation produced in it and a commit message. [Datalad] and [Git] shell
// out to the respective tools through a [Runner]; [OCILayout] stores every
// file as a layer of an OCI image layout using oras-go, which needs no
// external tool.
package registry
