package internal

import (
	"github.com/earthboundkid/versioninfo/v2"
)

// Version reports the build version embedded by the Go toolchain.
func Version() string {
	return versioninfo.Short()
}
