package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
)

// Разделители пакетного ввода карточек: "Вопрос1%Ответ1;Вопрос2%Ответ2"
const (
	CardSeparator   = ";"
	AnswerSeparator = "%"
)

type CardService struct {
	cards   CardStore
	lessons *LessonService
	logger  *zap.Logger
}

func NewCardService(cards CardStore, lessons *LessonService, logger *zap.Logger) *CardService {
	return &CardService{
		cards:   cards,
		lessons: lessons,
		logger:  logger,
	}
}

// IsBatch сообщает, что текст нужно разбирать как пакет карточек,
// а не как один вопрос
func IsBatch(text string) bool {
	return strings.Contains(text, CardSeparator) || strings.Contains(text, AnswerSeparator)
}

// ParseBatch разбирает пакетный ввод карточек.
// Сегменты без вопроса пропускаются; ответ отделяется по первому '%',
// поэтому сам ответ может содержать '%'.
func ParseBatch(text string) []model.CardDraft {
	var drafts []model.CardDraft
	for _, segment := range strings.Split(text, CardSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		question, answer, _ := strings.Cut(segment, AnswerSeparator)
		question = strings.TrimSpace(question)
		answer = strings.TrimSpace(answer)
		if question == "" {
			continue
		}

		drafts = append(drafts, model.CardDraft{Question: question, Answer: answer})
	}
	return drafts
}

// ParseEdit разбирает ввод при редактировании карточки: "Вопрос%Ответ"
func ParseEdit(text string) (model.CardDraft, error) {
	question, answer, found := strings.Cut(text, AnswerSeparator)
	if !found {
		return model.CardDraft{}, ErrBadCardFormat
	}

	draft := model.CardDraft{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}
	if draft.Question == "" {
		return model.CardDraft{}, ErrBadCardFormat
	}
	return draft, nil
}

// AddBatch добавляет карточки из пакетного ввода и возвращает их количество.
// Если ни одна карточка не распознана - ErrBadCardFormat.
func (s *CardService) AddBatch(ctx context.Context, teacherID, lessonID int64, text string) (int, error) {
	if _, err := s.lessons.Authored(ctx, teacherID, lessonID); err != nil {
		return 0, err
	}

	drafts := ParseBatch(text)
	if len(drafts) == 0 {
		return 0, ErrBadCardFormat
	}

	added := 0
	for _, draft := range drafts {
		card := &model.Card{
			Question: draft.Question,
			Answer:   draft.Answer,
			LessonID: lessonID,
		}
		if err := s.cards.Create(ctx, card); err != nil {
			return added, fmt.Errorf("create card: %w", err)
		}
		added++
	}

	s.logger.Info("Cards added",
		zap.Int64("lesson_id", lessonID),
		zap.Int("count", added))

	return added, nil
}

// Add добавляет одну карточку (пошаговый ввод: сначала вопрос, потом ответ)
func (s *CardService) Add(ctx context.Context, teacherID, lessonID int64, question, answer string) (*model.Card, error) {
	if _, err := s.lessons.Authored(ctx, teacherID, lessonID); err != nil {
		return nil, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyInput
	}

	card := &model.Card{
		Question: question,
		Answer:   strings.TrimSpace(answer),
		LessonID: lessonID,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	return card, nil
}

// List возвращает все карточки урока в порядке сквозной нумерации
func (s *CardService) List(ctx context.Context, lessonID int64) ([]*model.Card, error) {
	return s.cards.ListByLesson(ctx, lessonID)
}

// At возвращает карточку по номеру (с 1) в полном, не разбитом на страницы списке
func (s *CardService) At(ctx context.Context, lessonID int64, index int) (*model.Card, error) {
	cards, err := s.cards.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if index < 1 || index > len(cards) {
		return nil, ErrCardIndex
	}
	return cards[index-1], nil
}

// DeleteAt удаляет карточку по сквозному номеру
func (s *CardService) DeleteAt(ctx context.Context, teacherID, lessonID int64, index int) (*model.Card, error) {
	if _, err := s.lessons.Authored(ctx, teacherID, lessonID); err != nil {
		return nil, err
	}

	card, err := s.At(ctx, lessonID, index)
	if err != nil {
		return nil, err
	}

	deleted, err := s.cards.Delete(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("delete card: %w", err)
	}
	if !deleted {
		return nil, ErrCardNotFound
	}

	s.logger.Info("Card deleted",
		zap.Int64("card_id", card.ID),
		zap.Int64("lesson_id", lessonID),
		zap.Int("index", index))

	return card, nil
}

// Edit заменяет вопрос и ответ карточки вводом "Вопрос%Ответ"
func (s *CardService) Edit(ctx context.Context, teacherID, cardID int64, text string) (*model.Card, error) {
	draft, err := ParseEdit(text)
	if err != nil {
		return nil, err
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	if _, err := s.lessons.Authored(ctx, teacherID, card.LessonID); err != nil {
		return nil, err
	}

	card.Question = draft.Question
	card.Answer = draft.Answer

	updated, err := s.cards.Update(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	if !updated {
		return nil, ErrCardNotFound
	}

	return card, nil
}
