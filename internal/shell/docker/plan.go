package docker

import "github.com/Liquid4All/on-prem-stack/internal/core/serving"

// SpecFromPlan converts a pure container plan into a ContainerSpec.
func SpecFromPlan(plan serving.ContainerPlan) ContainerSpec {
	spec := ContainerSpec{
		Name:    plan.Name,
		Image:   plan.Image,
		Command: plan.Command,
		Env:     plan.Env,
		Labels:  plan.Labels,
	}

	for _, p := range plan.Ports {
		spec.Ports = append(spec.Ports, PortBinding{
			ContainerPort: p.ContainerPort,
			HostPort:      p.HostPort,
			Protocol:      p.Protocol,
		})
	}

	for _, v := range plan.Volumes {
		spec.Volumes = append(spec.Volumes, VolumeMount{
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		})
	}

	for _, d := range plan.Devices {
		spec.DeviceRequests = append(spec.DeviceRequests, DeviceRequest{
			Driver:       d.Driver,
			Count:        d.Count,
			DeviceIDs:    d.DeviceIDs,
			Capabilities: d.Capabilities,
		})
	}

	if plan.HealthCheck != nil {
		spec.HealthCheck = &HealthCheck{
			Test:     plan.HealthCheck.Test,
			Interval: plan.HealthCheck.Interval,
		}
	}

	return spec
}
