package research

import (
	"context"
	"fmt"

	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/store"
)

// write produces the final assistant message and appends it to the state.
// Post-processing is applied to every output regardless of how well the
// model behaved.
func (c *Controller) write(ctx context.Context, state store.ConversationState, question string, fallback bool, feedback string) store.ConversationState {
	answer, err := c.caps.Write(ctx, capability.WriteRequest{
		Question:       question,
		History:        state.Messages,
		DBResults:      state.DBResults,
		WebResults:     state.WebResults,
		Fallback:       fallback,
		GraderFeedback: feedback,
	})
	if err != nil {
		c.logger.Printf("[RESEARCH] Write call failed: %v", err)
		answer = c.fallbackTemplate()
	} else {
		answer = PostProcess(answer)
		if fallback {
			answer = c.validateFallback(answer)
		}
	}

	turn := &store.ChatTurn{Role: store.RoleAssistant, Text: answer}
	return c.apply(state, store.StepWrite, store.Patch{AppendMessage: turn})
}

// validateFallback enforces the fallback contract: an apology marker and a
// hard length ceiling. Anything else is replaced wholesale with the fixed
// template, so a rambling model can never leak a half-answer on the
// give-up path.
func (c *Controller) validateFallback(answer string) string {
	if !containsApologyMarker(answer) || len([]rune(answer)) > fallbackLengthCeiling {
		c.logger.Printf("[RESEARCH] Fallback output failed validation, using template")
		return c.fallbackTemplate()
	}
	return answer
}

func (c *Controller) fallbackTemplate() string {
	return fmt.Sprintf(
		"죄송합니다. 요청하신 내용에 대한 신뢰할 수 있는 정보를 찾지 못했습니다. 공식 홈페이지(%s)를 확인해 주세요.",
		c.cfg.OfficialSiteURL)
}
