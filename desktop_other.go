//go:build !linux && !console

package main

import "unsafe"

// setDesktopIdentity is only implemented for GTK
func setDesktopIdentity(windowPtr unsafe.Pointer) {}
