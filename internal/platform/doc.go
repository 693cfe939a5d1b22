// Package platform contains OS integration and YouTube glue: filesystem
// helpers, URL recognition, playlist expansion and opening folders in the
// system file manager.
package platform
