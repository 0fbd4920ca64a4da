// Package files writes run artifacts to disk.
//
// Manager renders each artifact through a caller-supplied callback into a
// temporary file inside the output directory, then renames it over the
// final name. The rename keeps reruns atomic: a chart file either holds
// the previous complete image or the new one, never a partial write.
//
// Example usage:
//
//	manager := files.NewManager("out")
//	if err := manager.EnsureOutputDir(); err != nil {
//	    return err
//	}
//
//	artifact, err := manager.WriteArtifact("global_cases_line.png",
//	    "Line chart: Trends over time",
//	    func(w io.Writer) error { return renderer.LineChart(w, daily) })
package files
