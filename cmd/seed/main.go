package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	mongodoc "github.com/sngm3741/interview-desk/api/internal/infrastructure/mongo"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/questionnaire"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envFile    string
	count      int
	owners     []string
	drop       bool
	randomSeed int64
}

var (
	familyNames = []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임", "한", "오"}
	givenNames  = []string{"민수", "서연", "지훈", "하늘", "도윤", "수빈", "예준", "지민", "현우", "유진", "승민", "다은"}
	latinNames  = []string{"Kevin Park", "Anna Lee", "Tomás Silva", "Yuki Tanaka"}
	positions   = []string{"홀 서버", "주방 보조", "스시 셰프", "매니저", "설거지"}
	stores      = []string{"강남점", "홍대점", "잠실점", "판교점", "부산 서면점"}
	visas       = []string{"E-9", "H-2", "F-4", "D-2"}
	answerBank  = []string{
		"주말 근무 가능합니다.",
		"이전 직장에서 3년간 근무했습니다.",
		"손님 응대를 좋아합니다.",
		"초밥 밥 짓기를 배우고 싶습니다.",
		"야간 근무는 어렵습니다.",
		"팀원과 갈등이 있을 때는 먼저 대화합니다.",
		"위생 교육을 이수했습니다.",
		"통근 시간은 30분 정도입니다.",
	}
	sampleSummary = "## 종합 평가\n\n- 응대 태도가 좋음\n- 근무 가능 시간이 넓음\n\n---\n\n## 확인 필요\n\n- 야간 근무 여부\n"
)

func main() {
	opts := parseFlags()

	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "interview-desk")
	collection := envOrDefault("RECORD_COLLECTION", "interview_records")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodoc.NewRecordRepository(client.Database(dbName), collection)

	if opts.drop {
		if err := repo.Drop(ctx); err != nil {
			log.Fatalf("コレクション削除に失敗しました: %v", err)
		}
		log.Printf("既存コレクションを削除しました: %s", collection)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	q, err := questionnaire.Default()
	if err != nil {
		log.Fatalf("面接票の読み込みに失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	records := generateRecords(rng, q, opts.owners, opts.count, time.Now().UTC())
	if err := repo.InsertMany(ctx, records); err != nil {
		log.Fatalf("面接記録の挿入に失敗しました: %v", err)
	}

	log.Printf("Seed 完了: records=%d owners=%s seed=%d", len(records), strings.Join(opts.owners, ","), opts.randomSeed)
	log.Printf("Mongo: %s / %s.%s", mongoURI, dbName, collection)
}

func parseFlags() seedOptions {
	var opts seedOptions
	var owners string
	flag.StringVar(&opts.envFile, "env", ".env", "読み込む env ファイル")
	flag.IntVar(&opts.count, "count", 30, "生成する面接記録数")
	flag.StringVar(&owners, "owner", "manager-1", "記録の所有者 ID (カンマ区切りで複数指定)")
	flag.BoolVar(&opts.drop, "drop", false, "既存コレクションを削除してから投入する")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "乱数シード（再現用）")
	flag.Parse()

	if opts.count <= 0 {
		log.Fatal("count は 1 以上を指定してください")
	}
	for _, owner := range strings.Split(owners, ",") {
		if owner = strings.TrimSpace(owner); owner != "" {
			opts.owners = append(opts.owners, owner)
		}
	}
	if len(opts.owners) == 0 {
		log.Fatal("owner を 1 件以上指定してください")
	}
	return opts
}

// generateRecords は表示条件と同意の不変条件を満たすサンプル記録を作る。
func generateRecords(rng *rand.Rand, q *domain.Questionnaire, owners []string, count int, now time.Time) []domain.InterviewRecord {
	records := make([]domain.InterviewRecord, 0, count)
	for i := 0; i < count; i++ {
		createdAt := now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour)
		info := domain.BasicInfo{
			CandidateName:      randomName(rng),
			Position:           pick(rng, positions),
			Store:              pick(rng, stores),
			InterviewDate:      createdAt.Format(domain.DateLayout),
			InterviewerName:    pick(rng, familyNames) + "매니저",
			InterviewType:      domain.InterviewTypeStandard,
			HasSushiExperience: rng.Intn(2) == 0,
		}
		if rng.Intn(4) == 0 {
			info.InterviewType = domain.InterviewTypeDepth
		}
		if rng.Intn(3) == 0 {
			info.VisaStatus = pick(rng, visas)
			info.VisaExpiry = createdAt.AddDate(1+rng.Intn(2), 0, 0).Format(domain.DateLayout)
		}
		if rng.Intn(2) == 0 {
			info.Contact = fmt.Sprintf("010-%04d-%04d", rng.Intn(10000), rng.Intn(10000))
		}

		answers := make(map[string]string)
		acks := make(domain.Acknowledgements)
		for _, stage := range q.Stages {
			for _, section := range stage.VisibleSections(info) {
				for _, question := range section.Questions {
					if rng.Intn(3) > 0 {
						answers[question.ID] = pick(rng, answerBank)
					}
				}
				if len(section.Notices) == 0 {
					continue
				}
				if section.RequiresConsent && rng.Intn(2) == 0 {
					acks.SetConsent(section.ID, len(section.Notices), true)
					continue
				}
				for n := range section.Notices {
					acks.SetNotice(section.ID, len(section.Notices), n, rng.Intn(2) == 0)
				}
			}
		}

		record := domain.InterviewRecord{
			ID:               uuid.NewString(),
			OwnerID:          owners[rng.Intn(len(owners))],
			BasicInfo:        info,
			Answers:          answers,
			Acknowledgements: acks,
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt.Add(time.Duration(rng.Intn(120)) * time.Minute),
		}
		if rng.Intn(3) == 0 {
			record.AISummary = sampleSummary
		}
		records = append(records, record)
	}
	return records
}

func randomName(rng *rand.Rand) string {
	if rng.Intn(10) == 0 {
		return pick(rng, latinNames)
	}
	return pick(rng, familyNames) + pick(rng, givenNames)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
