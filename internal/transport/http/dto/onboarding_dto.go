package dto

import onboardingsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/onboarding"

type OnboardingStatusResponse struct {
	Completed    bool     `json:"completed"`
	MissingSteps []string `json:"missing_steps"`
}

func OnboardingStatusFromService(status onboardingsvc.Status) OnboardingStatusResponse {
	steps := status.MissingSteps
	if steps == nil {
		steps = []string{}
	}
	return OnboardingStatusResponse{
		Completed:    status.Completed,
		MissingSteps: steps,
	}
}
