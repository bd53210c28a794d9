// Package studyevents e-mails interested accounts about study activity.
//
// Delivery runs through a workers.Dispatcher so handlers return before mail
// is sent. Failures are logged and never surface to the request.
package studyevents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/mailer"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Messages for update notices.
const (
	MsgPublished       = "A new study has opened."
	MsgDescriptionEdit = "The study description was updated."
	MsgClosed          = "The study has ended."
	MsgRecruitingStart = "The study is now recruiting members."
	MsgRecruitingStop  = "The study has stopped recruiting members."
)

// Notifier fans study events out to accounts that opted in.
type Notifier struct {
	dir      directory.Directory
	mail     mailer.Sender
	jobs     workers.Dispatcher
	baseURL  string
	siteName string
	log      *zap.Logger
}

func New(dir directory.Directory, mail mailer.Sender, jobs workers.Dispatcher, baseURL, siteName string, logger *zap.Logger) *Notifier {
	return &Notifier{
		dir:      dir,
		mail:     mail,
		jobs:     jobs,
		baseURL:  strings.TrimRight(baseURL, "/"),
		siteName: siteName,
		log:      logger,
	}
}

// StudyCreated notifies accounts whose interests share at least one tag
// and one zone with the newly published study.
func (n *Notifier) StudyCreated(s models.Study) {
	tags, zones := s.TagIDs.Clone(), s.ZoneIDs.Clone()
	n.jobs.Submit(workers.Job{
		Name: "notify-study-created:" + s.Path,
		Run: func(ctx context.Context) error {
			accounts, err := n.dir.Accounts.FindInterested(ctx, tags, zones)
			if err != nil {
				return fmt.Errorf("find interested accounts: %w", err)
			}
			return n.deliver(s, MsgPublished, accounts, func(a models.Account) bool {
				return a.StudyCreatedByEmail
			})
		},
	})
}

// StudyUpdated notifies the study's managers and members.
func (n *Notifier) StudyUpdated(s models.Study, message string) {
	ids := make([]primitive.ObjectID, 0, s.ManagerIDs.Len()+s.MemberIDs.Len())
	seen := models.IDSet{}
	for _, set := range []models.IDSet{s.ManagerIDs, s.MemberIDs} {
		for _, id := range set {
			if seen.Add(id) {
				ids = append(ids, id)
			}
		}
	}
	n.jobs.Submit(workers.Job{
		Name: "notify-study-updated:" + s.Path,
		Run: func(ctx context.Context) error {
			accounts, err := n.dir.Accounts.GetByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("load study accounts: %w", err)
			}
			return n.deliver(s, message, accounts, func(a models.Account) bool {
				return a.StudyUpdatedByEmail
			})
		},
	})
}

func (n *Notifier) deliver(s models.Study, message string, accounts []models.Account, optedIn func(models.Account) bool) error {
	link := n.baseURL + "/study/" + s.EncodedPath()
	sent, failed := 0, 0
	for _, a := range accounts {
		if !optedIn(a) || !a.EmailVerified {
			continue
		}
		msg := mailer.BuildStudyNotice(mailer.StudyNoticeData{
			SiteName:   n.siteName,
			Nickname:   a.Nickname,
			StudyTitle: s.Title,
			Message:    message,
			Link:       link,
		})
		msg.To = a.Email
		if err := n.mail.Send(msg); err != nil {
			failed++
			n.log.Warn("study notice failed",
				zap.String("study", s.Path),
				zap.String("account_id", a.ID.Hex()),
				zap.Error(err))
			continue
		}
		sent++
	}
	n.log.Info("study notices sent",
		zap.String("study", s.Path),
		zap.String("message", message),
		zap.Int("sent", sent),
		zap.Int("failed", failed))
	return nil
}
