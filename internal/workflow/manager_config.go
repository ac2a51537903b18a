package workflow

import "pps1c/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Decoding runs in the foreground lane so new scans become visible quickly;
// angle derivation and product writing run in the background lane.
func (m *Manager) ConfigureStages(set StageSet) {
	foreground := &laneState{kind: laneForeground, name: "foreground"}
	background := &laneState{kind: laneBackground, name: "background"}

	if set.Loader != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "loader",
			handler:          set.Loader,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusLoading,
			doneStatus:       queue.StatusLoaded,
		})
	}
	if set.Deriver != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "deriver",
			handler:          set.Deriver,
			startStatus:      queue.StatusLoaded,
			processingStatus: queue.StatusDeriving,
			doneStatus:       queue.StatusDerived,
		})
	}
	if set.Writer != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "writer",
			handler:          set.Writer,
			startStatus:      queue.StatusDerived,
			processingStatus: queue.StatusWriting,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(foreground.stages) > 0 {
		foreground.finalize()
		lanes[foreground.kind] = foreground
		order = append(order, foreground.kind)
	}
	if len(background.stages) > 0 {
		background.finalize()
		lanes[background.kind] = background
		order = append(order, background.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
