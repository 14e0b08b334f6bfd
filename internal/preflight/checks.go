package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vogsdemo/internal/manifest"
)

const hostCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckManifest validates the manifest document against the manifest contract.
func CheckManifest(name, path string) Result {
	doc, err := manifest.LoadRaw(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if errs := manifest.ValidateDocument(doc); len(errs) > 0 {
		detail := errs[0]
		if len(errs) > 1 {
			detail = fmt.Sprintf("%s (+%d more)", detail, len(errs)-1)
		}
		return Result{Name: name, Detail: detail}
	}
	m, err := manifest.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d scenes", len(m.Scenes))}
}

// CheckManifestBudget verifies every scene stays within the asset budget.
func CheckManifestBudget(name, path string, thresholdBytes int64) Result {
	m, err := manifest.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	violations := manifest.BudgetViolations(m, thresholdBytes)
	if len(violations) == 0 {
		return Result{Name: name, Passed: true, Detail: "all scenes within budget"}
	}
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s (%d bytes)", v.SceneID, v.TotalBytes))
	}
	return Result{Name: name, Detail: "over budget: " + strings.Join(parts, ", ")}
}

// CheckHTTPReachable verifies that baseURL answers HTTP requests. Any status
// below 500 counts as reachable since CDNs commonly refuse bare directory paths.
func CheckHTTPReachable(ctx context.Context, name, baseURL string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, hostCheckTimeout)
	defer cancel()

	client := &http.Client{Timeout: hostCheckTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeHostError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("host error (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d)", resp.StatusCode)}
}

// summarizeHostError produces a human-readable summary for reachability failures.
func summarizeHostError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "reachability check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "reachability check timed out"
	}
	return fmt.Sprintf("unreachable (%v)", err)
}
