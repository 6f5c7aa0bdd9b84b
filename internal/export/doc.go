// Package export writes the blade plot and fan canvases as SVG and PNG files.
package export
