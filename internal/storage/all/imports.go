// Package all wires all built-in sink backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init function of each backend, which registers its
// factory with the storage package. After the import these sink kinds are
// available:
//
//   - "file"     (tabetl/internal/storage/file)
//   - "s3"       (tabetl/internal/storage/s3)
//   - "gcs"      (tabetl/internal/storage/gcs)
//   - "azblob"   (tabetl/internal/storage/azure)
//   - "sqlite"   (tabetl/internal/storage/sqlite)
//   - "postgres" (tabetl/internal/storage/postgres)
//   - "mssql"    (tabetl/internal/storage/mssql)
//
// Typical usage in a command's main package:
//
//	import _ "tabetl/internal/storage/all"
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "tabetl/internal/storage/azure"
	_ "tabetl/internal/storage/file"
	_ "tabetl/internal/storage/gcs"
	_ "tabetl/internal/storage/mssql"
	_ "tabetl/internal/storage/postgres"
	_ "tabetl/internal/storage/s3"
	_ "tabetl/internal/storage/sqlite"
)
