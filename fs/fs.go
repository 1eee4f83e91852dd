// Package appfs exposes the files embedded in the binary: SQL migrations,
// email templates and the common passwords list.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* common-passwords.txt
var FS embed.FS
