package compose

import (
	"context"
	"maps"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ProjectName is the compose project name used while loading.
const ProjectName = "liquid-labs"

// =============================================================================
// Preflight
// =============================================================================

// Preflight parses the stack's compose file with env interpolated into it.
// This is a pure function - no I/O, no side effects.
//
// Every ${VAR} referenced without a default must be present in env, so a
// stale or partial .env is caught before compose starts anything.
//
// Example:
//
//	project, err := Preflight(ctx, content, map[string]string{"STACK_VERSION": "c3d7dbacd1"})
func Preflight(ctx context.Context, content string, env map[string]string) (*Project, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}

	if missing := UnresolvedVariables(content, env); len(missing) > 0 {
		return nil, NewParseError("", "unresolved variables: "+strings.Join(missing, ", "), ErrUnresolvedVariable)
	}

	project, err := loadProject(ctx, content, env)
	if err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	result := &Project{
		Services: make([]Service, 0, len(project.Services)),
		Networks: make([]Network, 0, len(project.Networks)),
		Volumes:  make([]Volume, 0, len(project.Volumes)),
	}

	for _, svc := range project.Services {
		converted, err := convertService(svc)
		if err != nil {
			return nil, err
		}
		result.Services = append(result.Services, converted)
	}
	sort.Slice(result.Services, func(i, j int) bool { return result.Services[i].Name < result.Services[j].Name })

	if err := detectCircularDependencies(result.Services); err != nil {
		return nil, err
	}

	for name, net := range project.Networks {
		result.Networks = append(result.Networks, Network{Name: name, External: bool(net.External)})
	}
	sort.Slice(result.Networks, func(i, j int) bool { return result.Networks[i].Name < result.Networks[j].Name })

	for name, vol := range project.Volumes {
		result.Volumes = append(result.Volumes, Volume{Name: name, External: bool(vol.External)})
	}
	sort.Slice(result.Volumes, func(i, j int) bool { return result.Volumes[i].Name < result.Volumes[j].Name })

	return result, nil
}

// loadProject loads a compose file using compose-go
func loadProject(ctx context.Context, content string, env map[string]string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	// The loader adds COMPOSE_PROJECT_NAME to its environment, so it gets a copy.
	environment := make(types.Mapping, len(env))
	maps.Copy(environment, env)

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(content),
				Config:  dict,
			},
		},
		Environment: environment,
	}, func(opts *loader.Options) {
		opts.SetProjectName(ProjectName, false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// Paths are resolved by docker compose itself
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "dependency cycle detected") {
			return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
		}
		return nil, NewParseError("", errStr, ErrInvalidYAML)
	}

	return project, nil
}

// convertService converts a compose-go service to our Service type
func convertService(svc types.ServiceConfig) (Service, error) {
	service := Service{
		Name:  svc.Name,
		Image: svc.Image,
	}

	if service.Image == "" && svc.Build == nil {
		return Service{}, NewParseError("services."+svc.Name, "service must have image or build", ErrServiceNoImage)
	}

	for i, p := range svc.Ports {
		var published uint32
		if p.Published != "" {
			pub, err := strconv.ParseUint(p.Published, 10, 32)
			if err != nil || pub > 65535 {
				return Service{}, NewParseError(
					"services."+svc.Name+".ports["+strconv.Itoa(i)+"]",
					"published port must be a number <= 65535",
					ErrServiceInvalidPort,
				)
			}
			published = uint32(pub)
		}
		service.Ports = append(service.Ports, Port{
			Target:    p.Target,
			Published: published,
			Protocol:  p.Protocol,
		})
	}

	for _, v := range svc.Volumes {
		if v.Type == types.VolumeTypeVolume && v.Source != "" {
			service.Volumes = append(service.Volumes, v.Source)
		}
	}

	for dep := range svc.DependsOn {
		service.DependsOn = append(service.DependsOn, dep)
	}
	sort.Strings(service.DependsOn)

	return service, nil
}

// detectCircularDependencies detects circular dependencies in service dependencies
func detectCircularDependencies(services []Service) error {
	deps := make(map[string][]string)
	for _, svc := range services {
		deps[svc.Name] = svc.DependsOn
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(node string) bool
	hasCycle = func(node string) bool {
		visited[node] = true
		recStack[node] = true

		for _, dep := range deps[node] {
			if dep == node {
				return true
			}
			if !visited[dep] {
				if hasCycle(dep) {
					return true
				}
			} else if recStack[dep] {
				return true
			}
		}

		recStack[node] = false
		return false
	}

	for _, svc := range services {
		if !visited[svc.Name] && hasCycle(svc.Name) {
			return ErrCircularDependency
		}
	}

	return nil
}

// =============================================================================
// Variable Extraction
// =============================================================================

// variablePlaceholderRegex matches ${VAR_NAME}, ${VAR_NAME:-default} and ${VAR_NAME-default}.
// Group 2 is non-empty when the placeholder carries a default.
var variablePlaceholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:?-[^}]*)?\}`)

// ExtractVariables extracts environment variable placeholders from raw YAML content.
// Returns unique variable names without the ${} wrapper, in order of first use.
func ExtractVariables(content string) []string {
	seen := make(map[string]bool)
	var vars []string

	for _, match := range variablePlaceholderRegex.FindAllStringSubmatch(content, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			vars = append(vars, match[1])
		}
	}

	return vars
}

// UnresolvedVariables returns the placeholders without a default that env does not set.
func UnresolvedVariables(content string, env map[string]string) []string {
	seen := make(map[string]bool)
	var missing []string

	for _, match := range variablePlaceholderRegex.FindAllStringSubmatch(content, -1) {
		name, hasDefault := match[1], match[2] != ""
		if hasDefault || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := env[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}
