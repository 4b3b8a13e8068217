package app

import "fmt"

// FormatLine renders the operator line of a fix.
func FormatLine(f HorizontalFix) string {
	line := fmt.Sprintf("Az/El: %.2f°, %.2f° | XYZ: (%+.3f, %+.3f, %+.3f)",
		f.Azimuth, f.Elevation, f.Vector[0], f.Vector[1], f.Vector[2])
	if f.BelowHorizon() {
		line += " (Below horizon)"
	}
	return line
}

// FormatPayload renders the framed device payload of a fix: <AZ,EL,X,Y,Z>.
func FormatPayload(f HorizontalFix) string {
	return fmt.Sprintf("<%.2f,%.2f,%.4f,%.4f,%.4f>",
		f.Azimuth, f.Elevation, f.Vector[0], f.Vector[1], f.Vector[2])
}

// FormatError renders the operator line of a failed resolution.
func FormatError(target TargetSpec, reason string) string {
	return fmt.Sprintf("Error finding '%s': %s", target.String(), reason)
}
