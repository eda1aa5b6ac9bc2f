/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "fmt"

// Result is a player's final tally, sent privately once they finish.
type Result struct {
	Score int
	Total int
}

// SubmitAnswer stores answer at index for the player owned by connID. The
// returned Result is non-nil only when this call finished the player's quiz;
// a player who already finished keeps the score computed at that moment.
func (r *Room) SubmitAnswer(connID string, index, answer int) (*Result, error) {
	p := r.playerByConn(connID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}

	if index < 0 || index > r.Quiz.lastIndex() {
		return nil, fmt.Errorf("%w: %d of %d", ErrQuestionOutOfRange, index, len(r.Quiz.Questions))
	}

	p.setAnswer(index, answer)

	if index != r.Quiz.lastIndex() || p.Finished {
		return nil, nil
	}

	p.Score = score(p.Answers, r.Quiz)
	p.Finished = true

	return &Result{
		Score: p.Score,
		Total: len(r.Quiz.Questions),
	}, nil
}

// score counts answers matching the key. Missing slots never match.
func score(answers []int, quiz Quiz) int {
	correct := 0

	for i, q := range quiz.Questions {
		if i >= len(answers) {
			break
		}

		if answers[i] != noAnswer && answers[i] == q.CorrectAnswer {
			correct++
		}
	}

	return correct
}
