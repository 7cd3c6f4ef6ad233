package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	reviewerAgentName    = "resume_reviewer"
	coverWriterAgentName = "cover_letter_writer"
)

func GetAgent(ctx context.Context, apiKey, modelName, agentName, description, instruction string) (agent.Agent, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	customAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: description,
		Instruction: instruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	return customAgent, nil
}

// agentGenerator runs one throwaway agent session per Generate call.
type agentGenerator struct {
	appName  string
	runner   *runner.Runner
	sessions session.Service
}

func newAgentGenerator(ctx context.Context, apiKey, modelName, agentName, description, instruction string) (*agentGenerator, error) {
	a, err := GetAgent(ctx, apiKey, modelName, agentName, description, instruction)
	if err != nil {
		return nil, err
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        a.Name(),
		Agent:          a,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}

	return &agentGenerator{
		appName:  a.Name(),
		runner:   r,
		sessions: sessions,
	}, nil
}

func (g *agentGenerator) Generate(ctx context.Context, userID, message string) (string, error) {
	agentSession, err := g.sessions.Create(ctx, &session.CreateRequest{
		AppName:   g.appName,
		UserID:    userID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		err := g.sessions.Delete(ctx, &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		})
		if err != nil {
			log.Printf("failed to delete agent session %s: %v", agentSession.Session.ID(), err)
		}
	}()

	stream := g.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: message},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	if output == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output, nil
}
