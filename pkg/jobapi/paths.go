package jobapi

import "net/url"

// TaskPath is the generic task endpoint: POST starts, GET reports status,
// DELETE cancels.
func TaskPath(resourceID, jobType string) string {
	return "/api/task/" + url.PathEscape(resourceID) + "/type/" + url.PathEscape(jobType)
}

// OptimizationResultsPath reports the status of an optimization run.
func OptimizationResultsPath(projectID, optimizationID string) string {
	return "/api/project/" + url.PathEscape(projectID) + "/optimizations/" + url.PathEscape(optimizationID) + "/results"
}

// CalibrationPath reports the status of an automatic calibration.
func CalibrationPath(projectID, parsetID string) string {
	return "/api/project/" + url.PathEscape(projectID) + "/parsets/" + url.PathEscape(parsetID) + "/automatic_calibration"
}
