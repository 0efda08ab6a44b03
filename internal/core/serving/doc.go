// Package serving provides pure functions for planning model-serving containers.
//
// This package turns CLI parameters and checkpoint metadata into container
// plans for the vLLM server. All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - Naming: images, volumes, networks and labels used by the stack (CheckpointImage)
//   - Container: build container plans (BuildHuggingFacePlan, BuildCheckpointPlan)
//   - Metadata: parse model_metadata.json (ParseCheckpointMetadata)
//   - Ports: resolve the published host port of a running server (ResolveHostPort)
//
// # Usage
//
// The imperative shell (internal/shell/modelops) validates inputs with these
// functions, then executes the plans via the Docker lifecycle facade.
//
//	plan, err := serving.BuildHuggingFacePlan(params)
//	id, err := lifecycle.RunContainer(ctx, toSpec(plan))
package serving
