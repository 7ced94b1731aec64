package action

import (
	"fmt"
	"strings"

	"minebot/src/model"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

func getSystemTemplate() string {
	return `You are an AI playing Minecraft. Always answer with a single JSON object and nothing else.`
}

// Literal braces are doubled because the template is rendered with FString.
func getUserTemplate() string {
	return `You are {bot_name}, an AI playing Minecraft on the server {server}.

Current situation: {situation}
Goal: {goal}

Reply with JSON in exactly this format:
{{
    "action": "<action_name>",
    "reason": "<why>",
    "chat_message": "<message to send in chat, may be empty>"
}}

Available actions:
{actions}`
}

func actionList() string {
	var b strings.Builder
	for i, a := range model.ActionKinds {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", a.Kind, a.Description)
	}
	return b.String()
}

// createActionTemplate builds the system + user chat template.
func createActionTemplate() prompt.ChatTemplate {
	messages := []schema.MessagesTemplate{
		schema.SystemMessage(getSystemTemplate()),
		schema.UserMessage(getUserTemplate()),
	}
	return prompt.FromMessages(schema.FString, messages...)
}

// templateVars returns the values substituted into the user template.
func templateVars(botName, server, situation, goal string) map[string]any {
	return map[string]any{
		"bot_name":  botName,
		"server":    server,
		"situation": situation,
		"goal":      goal,
		"actions":   actionList(),
	}
}
