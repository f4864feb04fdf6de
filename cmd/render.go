package main

import (
	"fmt"
	"io"

	"tidbyt.dev/journeys"
)

func printSelection(w io.Writer, origin, terminus string, s *journeys.Selection) {
	fmt.Fprintf(w, "Best journeys from \"%s\" to \"%s\" among %d:\n", origin, terminus, s.Count)
	fmt.Fprintf(w, "Foremost: %s, duration: %dm\n", s.Foremost, s.Foremost.Duration())
	fmt.Fprintf(w, "Shortest: %s, duration: %dm\n", s.Shortest, s.Shortest.Duration())
	fmt.Fprintf(w, "Fastest: %s, duration: %dm\n", s.Fastest, s.Fastest.Duration())
}

func printNoPath(w io.Writer, origin, terminus string, departure fmt.Stringer) {
	fmt.Fprintf(w, "No journey from \"%s\" to \"%s\" after %s\n", origin, terminus, departure)
}
