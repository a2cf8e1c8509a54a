//go:build sqlite_vec && cgo

package vectorstore

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// Registers the sqlite-vec extension with the mattn/go-sqlite3 driver on
// builds that opt into cgo. Adapted unchanged from
// theRebelliousNerd-codenerd's internal/store/init_vec.go. Query in
// gateway.go does not call the extension; it ranks with the brute-force
// cosineDistance path whether or not this build tag is set.
func init() {
	vec.Auto()
}
