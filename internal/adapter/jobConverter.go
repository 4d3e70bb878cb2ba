package adapter

import (
	"fmt"

	"github.com/voicedesk/orchestrator/internal/api"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
)

func ToReindexResponse(j jobModel.Job) api.ReindexResponse {
	return api.ReindexResponse{
		Status:        "started",
		JobId:         j.Id,
		EstimatedTime: config.ReindexEstimatedTime.String(),
		StatusURL:     fmt.Sprintf("jobs/%s", j.Id),
	}
}

func ToJobResponse(j jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if j.Error.Message != "" || j.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    j.Error.Code,
			Message: j.Error.Message,
			Retry:   j.Error.Retry,
		}
	}

	resp := api.JobResponse{
		Id:        j.Id,
		Status:    string(j.Status),
		Source:    j.Source,
		Error:     errorPtr,
		StartTime: j.CreatedTime,
		EndTime:   j.EndTime,
	}
	// the report only means something once the job has run
	if j.Status == jobModel.JobStatusComplete || j.Status == jobModel.JobStatusError {
		report := j.Report
		resp.Report = &report
	}
	return resp
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id:      id,
		Code:    code,
		Message: message,
	}
}
