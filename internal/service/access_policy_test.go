package service

import (
	"testing"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"
)

func newPublishedQuiz() *model.Quiz {
	q := &model.Quiz{
		CreatorID:   10,
		Title:       "test quiz",
		IsPublished: true,
		IsActive:    true,
	}
	q.ID = 1
	return q
}

func newPrivateClass(teacherID uint) *model.Class {
	c := &model.Class{
		TeacherID: teacherID,
		Type:      model.ClassTypePrivate,
	}
	c.ID = 5
	return c
}

func TestEvaluateQuizAccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	student := accessCaller{userID: 100, role: model.Student}

	tests := []struct {
		name         string
		quiz         func() *model.Quiz
		class        *model.Class
		caller       accessCaller
		enrolled     bool
		attemptsUsed int64
		inProgress   bool
		code         string
		wantGranted  bool
		wantReason   string
	}{
		{
			name:       "nil quiz",
			quiz:       func() *model.Quiz { return nil },
			caller:     student,
			wantReason: util.ReasonNotFound,
		},
		{
			name: "unpublished",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.IsPublished = false
				return q
			},
			caller:     student,
			wantReason: util.ReasonNotAvailable,
		},
		{
			name: "inactive",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.IsActive = false
				return q
			},
			caller:     student,
			wantReason: util.ReasonNotAvailable,
		},
		{
			name: "before start date",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.StartDate = &future
				return q
			},
			caller:     student,
			wantReason: util.ReasonNotYetAvailable,
		},
		{
			name: "after end date",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.EndDate = &past
				return q
			},
			caller:     student,
			wantReason: util.ReasonExpired,
		},
		{
			name:       "private class not enrolled",
			quiz:       newPublishedQuiz,
			class:      newPrivateClass(10),
			caller:     student,
			wantReason: util.ReasonForbiddenEnroll,
		},
		{
			name:        "private class enrolled",
			quiz:        newPublishedQuiz,
			class:       newPrivateClass(10),
			caller:      student,
			enrolled:    true,
			wantGranted: true,
		},
		{
			name:        "creator bypasses enrollment",
			quiz:        newPublishedQuiz,
			class:       newPrivateClass(99),
			caller:      accessCaller{userID: 10, role: model.Teacher},
			wantGranted: true,
		},
		{
			name:        "class teacher bypasses enrollment",
			quiz:        newPublishedQuiz,
			class:       newPrivateClass(50),
			caller:      accessCaller{userID: 50, role: model.Teacher},
			wantGranted: true,
		},
		{
			name: "creator not exempt from time window",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.EndDate = &past
				return q
			},
			caller:     accessCaller{userID: 10, role: model.Teacher},
			wantReason: util.ReasonExpired,
		},
		{
			name: "wrong access code",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.AccessCode = "SECRET"
				return q
			},
			caller:     student,
			code:       "WRONG",
			wantReason: util.ReasonInvalidAccessCode,
		},
		{
			name: "correct access code",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.AccessCode = "SECRET"
				return q
			},
			caller:      student,
			code:        "SECRET",
			wantGranted: true,
		},
		{
			name: "public quiz with public access code",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.IsPublic = true
				q.PublicAccessCode = "OPEN123"
				return q
			},
			caller:     student,
			code:       "",
			wantReason: util.ReasonInvalidAccessCode,
		},
		{
			name: "public quiz ignores private access code",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.IsPublic = true
				q.AccessCode = "SECRET"
				return q
			},
			caller:      student,
			wantGranted: true,
		},
		{
			name: "attempt limit reached",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 2
				return q
			},
			caller:       student,
			attemptsUsed: 2,
			wantReason:   util.ReasonMaxAttemptsReached,
		},
		{
			name: "attempts below limit",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 2
				return q
			},
			caller:       student,
			attemptsUsed: 1,
			wantGranted:  true,
		},
		{
			name: "zero max attempts means unlimited",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 0
				return q
			},
			caller:       student,
			attemptsUsed: 500,
			wantGranted:  true,
		},
		{
			// 进行中的作答也计入总数，但续作不新占名额，不得被封顶拦下
			name: "in-progress attempt at cap still resumable",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 1
				return q
			},
			caller:       student,
			attemptsUsed: 1,
			inProgress:   true,
			wantGranted:  true,
		},
		{
			name: "completed attempts at cap block new start",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 1
				return q
			},
			caller:       student,
			attemptsUsed: 1,
			inProgress:   false,
			wantReason:   util.ReasonMaxAttemptsReached,
		},
		{
			// 进行中的作答只豁免第7步，其它拒绝原因照常生效
			name: "in-progress attempt does not bypass expiry",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 1
				q.EndDate = &past
				return q
			},
			caller:       student,
			attemptsUsed: 1,
			inProgress:   true,
			wantReason:   util.ReasonExpired,
		},
		{
			// 检查顺序固定：未发布先于访问码报出
			name: "unpublished reported before access code",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.IsPublished = false
				q.AccessCode = "SECRET"
				return q
			},
			caller:     student,
			code:       "WRONG",
			wantReason: util.ReasonNotAvailable,
		},
		{
			// 未选课先于次数上限报出
			name: "enrollment reported before attempt limit",
			quiz: func() *model.Quiz {
				q := newPublishedQuiz()
				q.MaxAttempts = 1
				return q
			},
			class:        newPrivateClass(10),
			caller:       student,
			attemptsUsed: 1,
			wantReason:   util.ReasonForbiddenEnroll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateQuizAccess(tt.quiz(), tt.class, tt.caller, tt.enrolled, tt.attemptsUsed, tt.inProgress, tt.code, now)
			if got.Granted != tt.wantGranted {
				t.Fatalf("granted = %v, want %v (reason=%q)", got.Granted, tt.wantGranted, got.Reason)
			}
			if !tt.wantGranted && got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if tt.wantGranted && got.Reason != "" {
				t.Errorf("granted decision should not carry a reason, got %q", got.Reason)
			}
		})
	}
}

func TestEvaluateQuizAccessPublicClassNoEnrollmentCheck(t *testing.T) {
	quiz := newPublishedQuiz()
	class := &model.Class{TeacherID: 10, Type: model.ClassTypePublic}
	class.ID = 5

	got := evaluateQuizAccess(quiz, class, accessCaller{userID: 100, role: model.Student}, false, 0, false, "", time.Now())
	if !got.Granted {
		t.Fatalf("public class quiz should not require enrollment, got reason %q", got.Reason)
	}
}
