// Package x11 owns the display-server side of the visual bell: the xgb
// connection, XKB negotiation and bell subscription, the single
// override-redirect flash window, and the event pump that feeds the
// flash controller.
package x11
