package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

var commonFirstNames = []string{
	"Camille", "Julien", "Claire", "Nicolas", "Sophie", "Thomas", "Laura", "Antoine",
	"Émilie", "Pierre", "Marion", "Lucas", "Amel", "Karim", "Nadia", "Hugo",
	"Chloé", "Mathieu", "Inès", "Romain",
}

var commonLastNames = []string{
	"Martin", "Bernard", "Dubois", "Durand", "Moreau", "Laurent", "Lefebvre", "Leroy",
	"Roux", "Fournier", "Girard", "Bonnet", "Ben Salah", "Nguyen", "Garcia", "Fontaine",
	"Chevalier", "Masson", "Benali", "Perrin",
}

var grades = []domain.Grade{
	domain.GradeProfesseur,
	domain.GradeMaitreConferences,
	domain.GradeMaitreAssistant,
	domain.GradeAssistant,
	domain.GradeVacataire,
}

func GenerateRandomGrade() domain.Grade {
	return grades[rand.Intn(len(grades))]
}

func emailFromName(firstName, lastName string) string {
	clean := func(s string) string {
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, " ", "-")
		s = strings.ReplaceAll(s, "é", "e")
		s = strings.ReplaceAll(s, "è", "e")
		return s
	}
	return fmt.Sprintf("%s.%s%d@univ.example", clean(firstName), clean(lastName), rand.Intn(100))
}

func GenerateRandomSupervisor() *domain.Supervisor {
	firstName := commonFirstNames[rand.Intn(len(commonFirstNames))]
	lastName := commonLastNames[rand.Intn(len(commonLastNames))]

	sup := &domain.Supervisor{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        emailFromName(firstName, lastName),
		Grade:        GenerateRandomGrade(),
		Participates: rand.Intn(10) > 0, // environ un surveillant sur dix est dispensé
	}

	// Les professeurs ont en général un quota plus serré.
	switch sup.Grade {
	case domain.GradeProfesseur:
		sup.MaxSessions = rand.Intn(3) + 1
	case domain.GradeMaitreConferences:
		sup.MaxSessions = rand.Intn(4) + 2
	default:
		sup.MaxSessions = 0
	}

	return sup
}

// GenerateRandomUnavailability draws up to n half-day windows inside the
// given span.
func GenerateRandomUnavailability(spanStart time.Time, days, n int) []domain.TimeWindow {
	windows := make([]domain.TimeWindow, 0, n)
	for i := 0; i < n; i++ {
		day := spanStart.AddDate(0, 0, rand.Intn(days))
		if rand.Intn(2) == 0 {
			windows = append(windows, domain.TimeWindow{
				Start: day.Add(8 * time.Hour),
				End:   day.Add(12 * time.Hour),
			})
		} else {
			windows = append(windows, domain.TimeWindow{
				Start: day.Add(13 * time.Hour),
				End:   day.Add(18 * time.Hour),
			})
		}
	}
	return NormalizeWindows(windows)
}

var sessionSubjects = []string{
	"Analyse", "Algèbre", "Probabilités", "Informatique", "Mécanique",
	"Chimie organique", "Électromagnétisme", "Thermodynamique", "Statistiques", "Optique",
}

var roomPool = []string{"A101", "A102", "B201", "B202", "C301", "C302", "Amphi 1", "Amphi 2"}

// GenerateRandomSession places a two or three hour exam on a morning or
// afternoon slot of the period span.
func GenerateRandomSession(examPeriodID int64, spanStart time.Time, days int) *domain.Session {
	day := spanStart.AddDate(0, 0, rand.Intn(days))
	var start time.Time
	if rand.Intn(2) == 0 {
		start = day.Add(9 * time.Hour)
	} else {
		start = day.Add(14 * time.Hour)
	}

	roomCount := rand.Intn(3) + 1
	rooms := make([]string, 0, roomCount)
	offset := rand.Intn(len(roomPool))
	for i := 0; i < roomCount; i++ {
		rooms = append(rooms, roomPool[(offset+i)%len(roomPool)])
	}

	return &domain.Session{
		ExamPeriodID:   examPeriodID,
		Name:           fmt.Sprintf("%s (groupe %d)", sessionSubjects[rand.Intn(len(sessionSubjects))], rand.Intn(4)+1),
		Start:          start,
		End:            start.Add(time.Duration(rand.Intn(2)+2) * time.Hour),
		Rooms:          rooms,
		MinSupervisors: rand.Intn(2) + 1,
	}
}

func GenerateRandomPreferences(sup *domain.Supervisor, sessions []*domain.Session) []*domain.Preference {
	preferences := []*domain.Preference{}
	if len(sessions) == 0 || rand.Intn(3) == 0 {
		return preferences
	}

	session := sessions[rand.Intn(len(sessions))]
	polarity := domain.PolarityPrefers
	if rand.Intn(2) == 0 {
		polarity = domain.PolarityAvoids
	}

	preferences = append(preferences, &domain.Preference{
		SupervisorID: sup.ID,
		SessionID:    session.ID,
		Polarity:     polarity,
		Weight:       float64(rand.Intn(3) + 1),
	})

	return preferences
}
