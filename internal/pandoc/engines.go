package pandoc

import "os/exec"

// PDFEngines lists the supported typesetting engines in priority order.
// PDF output requires one of them on the executable search path.
var PDFEngines = []string{"xelatex", "pdflatex", "lualatex"}

// LookPathFunc matches exec.LookPath and is injectable for tests.
type LookPathFunc func(string) (string, error)

// DetectPDFEngine returns the first engine from PDFEngines present on the
// search path.
func DetectPDFEngine(lookPath LookPathFunc) (string, bool) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, engine := range PDFEngines {
		if _, err := lookPath(engine); err == nil {
			return engine, true
		}
	}
	return "", false
}
