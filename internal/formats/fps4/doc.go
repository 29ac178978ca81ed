// Package fps4 reads and writes FPS4 archive containers.
//
// An archive is a directory header listing named entries and a body
// holding their bytes. The body is either appended to the header or stored
// in a sibling "detail" file that shares the header's base name.
package fps4
