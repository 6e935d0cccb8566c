// The digest command runs one weekly digest pass over the trailing 7 days
// and exits. Meant to be invoked by an operator or an external scheduler,
// it takes no arguments and prints progress to stdout. Exit code is
// non-zero only on unrecoverable setup failure, per-recipient delivery
// failures never fail the run.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Luismorlan/newsportal/digest"
	"github.com/Luismorlan/newsportal/notifier"
	"github.com/Luismorlan/newsportal/store"
	"github.com/Luismorlan/newsportal/utils"
	"github.com/Luismorlan/newsportal/utils/dotenv"
	. "github.com/Luismorlan/newsportal/utils/log"
)

const digestWindow = 7 * 24 * time.Hour

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		Log.Fatal("fail to load env : ", err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	st := store.NewStore(db)

	mailer, err := notifier.NewEmailNotifierFromEnv()
	if err != nil {
		Log.Fatal("fail to configure mail transport : ", err)
	}
	if err := mailer.Ping(); err != nil {
		Log.Fatal("mail transport unreachable : ", err)
	}

	baseURL := os.Getenv("SITE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	fmt.Println("starting weekly digest...")

	pipeline := digest.NewPipeline(st, digest.NewComposer(st, baseURL), mailer, os.Stdout)

	firedAt := time.Now()
	sent, err := pipeline.Run(firedAt.Add(-digestWindow))
	if err != nil {
		Log.Fatal("digest run failed : ", err)
	}

	// Record the fire so the in-process weekly trigger won't double-send
	// within the same week.
	if err := st.RecordDigestRun(firedAt, sent); err != nil {
		Log.Error("fail to record digest run : ", err)
	}

	fmt.Printf("digest complete, emails sent: %d\n", sent)
}
