package authsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/nexaedu/campus/iam/auth"
	"github.com/robfig/cron/v3"
)

// AuditMaintenance poda a auditoria de login periodicamente. Roda de
// madrugada; tentativas além do período de retenção são removidas.
type AuditMaintenance struct {
	audit     auth.LoginAuditRepository
	retention time.Duration
	cron      *cron.Cron
}

// NewAuditMaintenance cria o job de manutenção da auditoria
func NewAuditMaintenance(audit auth.LoginAuditRepository, retention time.Duration) *AuditMaintenance {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &AuditMaintenance{
		audit:     audit,
		retention: retention,
		cron:      cron.New(),
	}
}

// Start agenda a poda diária às 03:00
func (m *AuditMaintenance) Start() error {
	if _, err := m.cron.AddFunc("0 3 * * *", m.runPrune); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop para o agendador, esperando a execução em curso terminar
func (m *AuditMaintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// RunOnce executa uma poda imediata; usado no boot e em testes
func (m *AuditMaintenance) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-m.retention)
	return m.audit.DeleteOlderThan(ctx, cutoff)
}

func (m *AuditMaintenance) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := m.RunOnce(ctx)
	if err != nil {
		logx.Error("Erro na poda da auditoria de login: %v", err)
		return
	}
	if deleted > 0 {
		logx.Info("Auditoria de login podada: %d tentativas removidas", deleted)
	}
}
