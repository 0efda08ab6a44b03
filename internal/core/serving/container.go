package serving

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Container Plan Building Functions
// =============================================================================

// HealthCheckCommand probes the vLLM health endpoint from inside the container.
const HealthCheckCommand = "curl --fail http://localhost:8000/health || exit 1"

// HealthCheckInterval is the interval between health probes.
const HealthCheckInterval = 30 * time.Second

// hubTokenEnv is read by vLLM to authenticate against the Hugging Face hub.
const hubTokenEnv = "HUGGING_FACE_HUB_TOKEN"

// BuildHuggingFacePlan builds a ContainerPlan for serving a Hugging Face model.
//
// The container is named after params.Name, which is also the served model
// name clients use in API requests.
//
// Example:
//
//	params := HuggingFaceParams{
//	    ServerOptions: DefaultServerOptions(),
//	    Name:          "lfm2",
//	    ModelPath:     "LiquidAI/LFM2-1.2B",
//	    MaxModelLen:   DefaultMaxModelLen,
//	    Token:         "hf_xxx",
//	}
//	plan, err := BuildHuggingFacePlan(params)
func BuildHuggingFacePlan(params HuggingFaceParams) (ContainerPlan, error) {
	if err := ValidateHuggingFaceParams(params); err != nil {
		return ContainerPlan{}, err
	}

	args := baseArgs(params.ModelPath, params.Name)
	args = append(args, tuningArgs(params.ServerOptions, params.MaxModelLen)...)

	plan := newPlan(params.Name, HuggingFaceImage, params.ServerOptions, args)
	plan.Env[hubTokenEnv] = params.Token
	plan.Labels[LabelSource] = SourceHuggingFace
	plan.Labels[LabelModel] = params.ModelPath
	if params.LaunchID != "" {
		plan.Labels[LabelLaunch] = params.LaunchID
	}
	return plan, nil
}

// BuildCheckpointPlan builds a ContainerPlan for serving a local checkpoint.
//
// The checkpoint directory is bind-mounted read-only at CheckpointMount and the
// image tag follows the stack version. The model length is fixed at
// DefaultMaxModelLen for checkpoints.
func BuildCheckpointPlan(params CheckpointParams) (ContainerPlan, error) {
	if err := ValidateCheckpointParams(params); err != nil {
		return ContainerPlan{}, err
	}

	args := baseArgs(CheckpointMount, params.ModelName)
	args = append(args, "--dtype", "bfloat16", "--enable-chunked-prefill", "false")
	args = append(args, tuningArgs(params.ServerOptions, DefaultMaxModelLen)...)

	plan := newPlan(params.ModelName, CheckpointImage(params.StackVersion), params.ServerOptions, args)
	plan.Volumes = []VolumePlan{{
		Source:   params.CheckpointDir,
		Target:   CheckpointMount,
		ReadOnly: true,
	}}
	plan.Labels[LabelSource] = SourceCheckpoint
	plan.Labels[LabelModel] = params.CheckpointDir
	if params.LaunchID != "" {
		plan.Labels[LabelLaunch] = params.LaunchID
	}
	return plan, nil
}

func newPlan(name, image string, opts ServerOptions, args []string) ContainerPlan {
	return ContainerPlan{
		Name:    name,
		Image:   image,
		Command: args,
		Env:     make(map[string]string),
		Labels: map[string]string{
			LabelManaged: "true",
		},
		Ports: []PortPlan{{
			ContainerPort: ServerPort,
			HostPort:      opts.HostPort,
			Protocol:      "tcp",
		}},
		Devices: []DevicePlan{GPURequest(opts.GPU)},
		HealthCheck: &HealthCheckPlan{
			Test:     []string{"CMD-SHELL", HealthCheckCommand},
			Interval: HealthCheckInterval,
		},
	}
}

func baseArgs(model, servedName string) []string {
	return []string{
		"--host", "0.0.0.0",
		"--port", strconv.Itoa(ServerPort),
		"--model", model,
		"--served-model-name", servedName,
		"--tensor-parallel-size", "1",
		"--max-logprobs", "0",
	}
}

func tuningArgs(opts ServerOptions, maxModelLen int) []string {
	modelLen := strconv.Itoa(maxModelLen)
	return []string{
		"--gpu-memory-utilization", strconv.FormatFloat(opts.GPUMemoryUtilization, 'f', -1, 64),
		"--max-num-seqs", strconv.Itoa(opts.MaxNumSeqs),
		"--max-model-len", modelLen,
		"--max-seq-len-to-capture", modelLen,
	}
}

// GPURequest maps the --gpu flag to an NVIDIA device request.
//
// Example:
//
//	GPURequest("all")  // Count: -1
//	GPURequest("0,2")  // DeviceIDs: ["0", "2"]
func GPURequest(gpu string) DevicePlan {
	req := DevicePlan{
		Driver:       "nvidia",
		Capabilities: []string{"gpu"},
	}
	ids := parseGPUList(gpu)
	if len(ids) == 0 {
		req.Count = -1
		return req
	}
	req.DeviceIDs = ids
	return req
}

// parseGPUList returns nil for "all" or an empty selection.
func parseGPUList(gpu string) []string {
	gpu = strings.TrimSpace(gpu)
	if gpu == "" || strings.EqualFold(gpu, DefaultGPU) {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(gpu, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// =============================================================================
// Parameter Validation
// =============================================================================

// ValidateServerOptions checks the tuning knobs shared by both launch modes.
func ValidateServerOptions(opts ServerOptions) error {
	if opts.HostPort < 1 || opts.HostPort > 65535 {
		return NewParamError("port", "must be between 1 and 65535, got "+strconv.Itoa(opts.HostPort), ErrInvalidParam)
	}
	if opts.GPUMemoryUtilization <= 0 || opts.GPUMemoryUtilization > 1 {
		return NewParamError("gpu-memory-utilization", "must be in (0, 1], got "+strconv.FormatFloat(opts.GPUMemoryUtilization, 'f', -1, 64), ErrInvalidParam)
	}
	if opts.MaxNumSeqs < 1 {
		return NewParamError("max-num-seqs", "must be positive", ErrInvalidParam)
	}
	for _, id := range parseGPUList(opts.GPU) {
		if _, err := strconv.Atoi(id); err != nil {
			return NewParamError("gpu", "expected \"all\" or comma-separated device indices, got "+strconv.Quote(opts.GPU), ErrInvalidParam)
		}
	}
	return nil
}

// ValidateHuggingFaceParams checks the run-hf inputs before any side effect.
func ValidateHuggingFaceParams(params HuggingFaceParams) error {
	if params.Token == "" {
		return NewParamError("", "Hugging Face token not provided. Set HUGGING_FACE_TOKEN environment variable or use --hf-token", ErrMissingToken)
	}
	if strings.TrimSpace(params.Name) == "" {
		return NewParamError("name", "is required", ErrInvalidParam)
	}
	if strings.TrimSpace(params.ModelPath) == "" {
		return NewParamError("path", "is required", ErrInvalidParam)
	}
	if params.MaxModelLen < 1 {
		return NewParamError("max-model-len", "must be positive", ErrInvalidParam)
	}
	return ValidateServerOptions(params.ServerOptions)
}

// ValidateCheckpointParams checks the run-checkpoint inputs before any side effect.
func ValidateCheckpointParams(params CheckpointParams) error {
	if params.CheckpointDir == "" {
		return NewParamError("path", "is required", ErrInvalidParam)
	}
	if params.ModelName == "" {
		return NewParamError("", ErrModelNameMissing.Error(), ErrModelNameMissing)
	}
	if params.StackVersion == "" {
		return NewParamError("stack.version", "is required", ErrInvalidParam)
	}
	return ValidateServerOptions(params.ServerOptions)
}
