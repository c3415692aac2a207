package events

// WorkflowStatus summarizes the latest known state of one workflow.
type WorkflowStatus struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	UpdatedAt  string  `json:"updated_at"`
	URL        string  `json:"url"`
	Repository *string `json:"repository"`
}

// Status folds workflow_run events into one current status per workflow
// name, keeping the event with the greatest updated_at. Events without a
// workflow_run field are ignored. An empty workflowName matches all
// workflows; otherwise the match is exact and case-sensitive.
//
// updated_at comparison is lexicographic, which is order-preserving for
// same-format ISO-8601 timestamps. On an exact tie the earlier-seen event
// wins (strict greater-than). Results are emitted in first-seen order of
// workflow names, so output is deterministic for a given log.
func Status(evs []Event, workflowName string) []WorkflowStatus {
	latest := make(map[string]WorkflowStatus)
	var order []string

	for _, ev := range evs {
		run := ev.WorkflowRun
		if run == nil {
			continue
		}
		if workflowName != "" && run.Name != workflowName {
			continue
		}

		cur, seen := latest[run.Name]
		if seen && run.UpdatedAt <= cur.UpdatedAt {
			continue
		}
		if !seen {
			order = append(order, run.Name)
		}

		ws := WorkflowStatus{
			Name:       run.Name,
			Status:     run.Status,
			Conclusion: run.Conclusion,
			UpdatedAt:  run.UpdatedAt,
			URL:        run.HTMLURL,
		}
		if ev.Repository != nil {
			repo := ev.Repository.FullName
			ws.Repository = &repo
		}
		latest[run.Name] = ws
	}

	out := make([]WorkflowStatus, 0, len(order))
	for _, name := range order {
		out = append(out, latest[name])
	}
	return out
}
