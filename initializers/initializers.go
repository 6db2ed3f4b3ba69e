package initializers

import (
	"context"
	"mailpilot-backend/config"
	"mailpilot-backend/db"
	"mailpilot-backend/fiberlog"
	approvalhandler "mailpilot-backend/lib/approval"
	"mailpilot-backend/lib/approval/condition"
	"mailpilot-backend/lib/approval/step"
	approvaltimeoutworker "mailpilot-backend/lib/approval/timeout-worker"
	businesshourshandler "mailpilot-backend/lib/business-hours"
	customerhistoryhandler "mailpilot-backend/lib/customer-history"
	draftarchive "mailpilot-backend/lib/draft-archive"
	xlsexport "mailpilot-backend/lib/export/xls"
	notificationhandler "mailpilot-backend/lib/notification"
	spacesettingshandler "mailpilot-backend/lib/space/settings/handler"
	spaceusershander "mailpilot-backend/lib/space/users/hander"
	spaceusersstore "mailpilot-backend/lib/space/users/store"
	workflowhandler "mailpilot-backend/lib/workflow"
	"time"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()

	businesshourshandler.NewHandler()
	customerhistoryhandler.NewHandler()
	spacesettingshandler.NewHandler()
	spaceusershander.NewHandler()
	workflowhandler.NewHandler()
	xlsexport.NewHandler()
	draftarchive.NewHandler()
	notificationhandler.NewHandler(time.Duration(config.Conf.Approval.NotifyTimeoutInSec) * time.Second)

	checkTimeout := time.Duration(config.Conf.Approval.ConditionTimeoutInSec) * time.Second
	evaluator := condition.NewEvaluator(businesshourshandler.Instance, customerhistoryhandler.Instance, checkTimeout)
	processor := step.NewProcessor(spaceusersstore.NewInstance(db.DB),
		businesshourshandler.Instance, customerhistoryhandler.Instance, checkTimeout)
	approvalhandler.NewHandler(evaluator, processor, time.Duration(config.Conf.Approval.LockWaitInSec)*time.Second)

	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// closes expired approval requests on schedule
	approvaltimeoutworker.StartWorker(ctx)
}
