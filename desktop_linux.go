//go:build linux && !console

package main

/*
#cgo pkg-config: gtk+-3.0
#include <gtk/gtk.h>
#include <stdlib.h>

void set_app_identity(GtkWindow *window, const char *app_id, const char *app_name) {
    g_set_prgname(app_id);
    g_set_application_name(app_name);

    if (window) {
        gtk_window_set_role(window, app_id);
    }
}
*/
import "C"

import "unsafe"

const (
	desktopAppID   = "value-converter"
	desktopAppName = "Value Converter"
)

// setDesktopIdentity names the GTK window so desktops group and label it
func setDesktopIdentity(windowPtr unsafe.Pointer) {
	appID := C.CString(desktopAppID)
	defer C.free(unsafe.Pointer(appID))
	appName := C.CString(desktopAppName)
	defer C.free(unsafe.Pointer(appName))

	var window *C.GtkWindow
	if windowPtr != nil {
		window = (*C.GtkWindow)(windowPtr)
	}
	C.set_app_identity(window, appID, appName)
}
