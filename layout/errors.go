package layout

import "errors"

// ErrNotBuilt is returned by operations that read the dataset before
// [Index.Build] has been called.
var ErrNotBuilt = errors.New("layout: index not built")
