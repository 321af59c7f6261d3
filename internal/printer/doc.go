// Package printer renders weighbridge tickets as ESC/POS command streams
// and ships them to a networked thermal printer.
package printer
