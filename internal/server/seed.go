package server

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/jaswdr/faker"
)

// Fixed sandbox accounts. Passwords are hashed on insert.
const (
	AdminEmail      = "gestor@acervo.dev"
	AdminPassword   = "gestor123"
	TeacherEmail    = "professor@acervo.dev"
	TeacherPassword = "professor123"
	PendingEmail    = "aluno@acervo.dev"
)

var seedTags = []string{"Matemática", "História", "Português", "Ciências", "Geografia", "Física"}

var seedMimes = []string{"application/pdf", "video/mp4", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "image/png"}

// Seed fills s with the fixed accounts, the tag taxonomy, n generated resources and a few
// playlists. The same seed always yields the same content.
func Seed(s *Store, n int, seed int64) error {
	fake := faker.NewWithSeed(rand.NewSource(seed))

	admin, _, err := s.AddUser(models.UserForm{Name: "Gestora Ana", Email: AdminEmail, Role: models.RoleManager, BirthDate: "1980-03-14", Password: AdminPassword})
	if err != nil {
		return err
	}
	teacher, _, err := s.AddUser(models.UserForm{Name: "Prof. " + fake.Person().Name(), Email: TeacherEmail, Role: models.RoleTeacher, BirthDate: "1985-07-22", Password: TeacherPassword})
	if err != nil {
		return err
	}
	if _, _, err := s.AddUser(models.UserForm{Name: fake.Person().Name(), Email: PendingEmail, Role: models.RoleStudent, BirthDate: "2005-11-02"}); err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		email := strings.ToLower(fmt.Sprintf("%s.%d@acervo.dev", fake.Person().FirstName(), i))
		if _, _, err := s.AddUser(models.UserForm{Name: fake.Person().Name(), Email: email, Role: models.RoleStudent, BirthDate: "2004-01-01", Password: "aluno123"}); err != nil {
			return err
		}
	}

	tagIDs := make([]int, 0, len(seedTags))
	for _, name := range seedTags {
		t, err := s.AddTag(name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, t.ID)
	}

	authors := []models.User{admin, teacher}
	resourceIDs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		r := models.Resource{
			Title:       strings.TrimSuffix(fake.Lorem().Sentence(3), "."),
			Description: fake.Lorem().Sentence(10),
			Featured:    i%4 == 0,
			Likes:       fake.IntBetween(0, 40),
			Views:       fake.IntBetween(0, 300),
			Downloads:   fake.IntBetween(0, 80),
		}

		switch i % 3 {
		case 0:
			r.Structure = models.StructureUpload
			r.MimeType = seedMimes[fake.IntBetween(0, len(seedMimes)-1)]
			r.AccessLink = fmt.Sprintf("/static/recursos/%d/arquivo", i+1)
		case 1:
			r.Structure = models.StructureURL
			r.ExternalURL = fake.Internet().URL()
		default:
			r.Structure = models.StructureNote
			r.Content = "# " + r.Title + "\n\n" + fake.Lorem().Paragraph(2)
		}

		tags := []int{tagIDs[i%len(tagIDs)]}
		if i%2 == 0 {
			tags = append(tags, tagIDs[(i+1)%len(tagIDs)])
		}

		created, err := s.AddResource(r, tags, authors[i%len(authors)])
		if err != nil {
			return err
		}
		resourceIDs = append(resourceIDs, created.ID)
	}

	for i, title := range []string{"Revisão para o ENEM", "Semana de Ciências", "Leituras Complementares"} {
		owner := authors[i%len(authors)]
		p := s.AddPlaylist(models.PlaylistForm{Title: title, Description: fake.Lorem().Sentence(8)}, owner)
		for j := i; j < len(resourceIDs); j += 3 {
			if err := s.AppendResource(p.ID, resourceIDs[j], owner); err != nil {
				return err
			}
		}
	}
	return nil
}
