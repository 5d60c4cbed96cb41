// aviation/sid.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "strings"

// DeprecatedSIDMarker prefixes SID names that have been superseded but
// are still filed (e.g. "#ADMAG2X").
const DeprecatedSIDMarker = "#"

func IsDeprecatedSID(sid string) bool {
	return strings.HasPrefix(sid, DeprecatedSIDMarker)
}

// CanonicalSID strips a single leading deprecation marker. Only one
// marker is removed, so "##X" becomes "#X".
func CanonicalSID(sid string) string {
	return strings.TrimPrefix(sid, DeprecatedSIDMarker)
}
