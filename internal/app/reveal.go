package app

import "dadam-quiz-service/internal/domain"

// buildQuizView applies the reveal gate: a viewer without a selection sees the
// question, options and who took part, nothing that exposes the answer key.
func buildQuizView(quiz domain.Quiz, selections []domain.QuizSelection, users map[int64]domain.User, viewerID int64) domain.QuizView {
	view := domain.QuizView{
		ID:               quiz.ID,
		QuestionContent:  quiz.QuestionContent,
		OptionA:          quiz.OptionA,
		OptionB:          quiz.OptionB,
		OptionC:          quiz.OptionC,
		OptionD:          quiz.OptionD,
		ParticipantCount: len(selections),
	}

	for i := range selections {
		if selections[i].UserID != viewerID {
			continue
		}
		mine := selections[i]
		correctAnswer := quiz.CorrectAnswer
		view.HasParticipated = true
		view.CorrectAnswer = &correctAnswer
		view.MySelection = &mine.SelectedOption
		view.IsMyAnswerCorrect = &mine.IsCorrect
		break
	}

	view.SelectionDetails = selectionDetails(selections, users, view.HasParticipated)
	return view
}

func selectionDetails(selections []domain.QuizSelection, users map[int64]domain.User, reveal bool) []domain.SelectionDetail {
	details := make([]domain.SelectionDetail, 0, len(selections))
	for _, sel := range selections {
		detail := domain.SelectionDetail{
			UserID:   sel.UserID,
			UserName: users[sel.UserID].Name,
		}
		if reveal {
			option, correct := sel.SelectedOption, sel.IsCorrect
			detail.SelectedOption = &option
			detail.IsCorrect = &correct
		}
		details = append(details, detail)
	}
	return details
}

func participantIDs(selections []domain.QuizSelection) []int64 {
	ids := make([]int64, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.UserID)
	}
	return ids
}
