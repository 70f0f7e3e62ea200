package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRepository implements application.RecordRepository using MongoDB.
type RecordRepository struct {
	collection *mongo.Collection
}

// NewRecordRepository creates a Mongo-backed interview record repository.
func NewRecordRepository(db *mongo.Database, collectionName string) *RecordRepository {
	return &RecordRepository{collection: db.Collection(collectionName)}
}

var _ application.RecordRepository = (*RecordRepository)(nil)

// EnsureIndexes は一覧取得用の (owner_id, created_at desc) インデックスを作成する。
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("owner_created_at"),
	})
	return err
}

// Find returns records newest first, optionally restricted to one owner.
func (r *RecordRepository) Find(ctx context.Context, filter application.RecordFilter) ([]domain.InterviewRecord, error) {
	mongoFilter := bson.M{}
	if owner := strings.TrimSpace(filter.OwnerID); owner != "" {
		mongoFilter["owner_id"] = owner
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]domain.InterviewRecord, 0)
	for cursor.Next(ctx) {
		var doc InterviewRecordDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, mapRecordDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID は ID で 1 件取得する。存在しなければ domain.ErrNotFound。
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*domain.InterviewRecord, error) {
	var doc InterviewRecordDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": strings.TrimSpace(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	record := mapRecordDocument(doc)
	return &record, nil
}

// Upsert は created_at と owner_id を初回挿入時のみ書き込む。
func (r *RecordRepository) Upsert(ctx context.Context, record *domain.InterviewRecord) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": record.ID}, buildRecordUpdate(record), opts)
	return err
}

func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": strings.TrimSpace(id)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertMany は seed 用に記録をまとめて投入する。
func (r *RecordRepository) InsertMany(ctx context.Context, records []domain.InterviewRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(records))
	for i := range records {
		docs = append(docs, mapRecordToDocument(&records[i]))
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Drop はコレクションを削除する。seed の -drop 用。
func (r *RecordRepository) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}

func buildRecordUpdate(record *domain.InterviewRecord) bson.M {
	doc := mapRecordToDocument(record)
	set := bson.M{
		"basic_info": doc.BasicInfo,
		"answers":    doc.Answers,
		// 旧形式の notice-*/consent-* キーは answers の置き換えで消える
		"acknowledgements": doc.Acknowledgements,
		"ai_summary":       doc.AISummary,
		"updated_at":       doc.UpdatedAt,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"owner_id":   doc.OwnerID,
			"created_at": doc.CreatedAt,
		},
	}
	if doc.Resume != nil {
		set["resume"] = doc.Resume
	} else {
		update["$unset"] = bson.M{"resume": ""}
	}
	return update
}

func mapRecordToDocument(record *domain.InterviewRecord) InterviewRecordDocument {
	info := record.BasicInfo
	doc := InterviewRecordDocument{
		ID:      record.ID,
		OwnerID: record.OwnerID,
		BasicInfo: BasicInfoDocument{
			CandidateName:      strings.TrimSpace(info.CandidateName),
			Position:           strings.TrimSpace(info.Position),
			Store:              strings.TrimSpace(info.Store),
			InterviewDate:      strings.TrimSpace(info.InterviewDate),
			InterviewerName:    strings.TrimSpace(info.InterviewerName),
			InterviewType:      info.InterviewType.String(),
			VisaStatus:         strings.TrimSpace(info.VisaStatus),
			VisaExpiry:         strings.TrimSpace(info.VisaExpiry),
			Contact:            strings.TrimSpace(info.Contact),
			HasSushiExperience: info.HasSushiExperience,
		},
		Answers:          domain.CloneAnswers(record.Answers),
		Acknowledgements: make(map[string]AcknowledgementDocument, len(record.Acknowledgements)),
		AISummary:        record.AISummary,
		CreatedAt:        record.CreatedAt.UTC(),
		UpdatedAt:        record.UpdatedAt.UTC(),
	}
	for sectionID, ack := range record.Acknowledgements {
		doc.Acknowledgements[sectionID] = AcknowledgementDocument{
			Consent: ack.Consent,
			Notices: append([]bool(nil), ack.Notices...),
		}
	}
	if record.Resume != nil {
		doc.Resume = &ResumeDocument{FileName: record.Resume.FileName, DataURL: record.Resume.DataURL}
	}
	return doc
}

// mapRecordDocument は Mongo ドキュメントをドメインの面接記録に変換する。
// 旧形式で answers に混在していた告知・同意フラグは Acknowledgements へ移す。
func mapRecordDocument(doc InterviewRecordDocument) domain.InterviewRecord {
	interviewType, err := domain.NewInterviewType(doc.BasicInfo.InterviewType)
	if err != nil {
		interviewType = domain.InterviewTypeStandard
	}

	answers, legacy := domain.SplitLegacyAnswers(doc.Answers)
	acks := make(domain.Acknowledgements, len(doc.Acknowledgements)+len(legacy))
	for sectionID, ack := range legacy {
		acks[sectionID] = ack
	}
	for sectionID, ack := range doc.Acknowledgements {
		acks[sectionID] = domain.SectionAcknowledgement{
			Consent: ack.Consent,
			Notices: append([]bool(nil), ack.Notices...),
		}
	}

	record := domain.InterviewRecord{
		ID:      doc.ID,
		OwnerID: doc.OwnerID,
		BasicInfo: domain.BasicInfo{
			CandidateName:      doc.BasicInfo.CandidateName,
			Position:           doc.BasicInfo.Position,
			Store:              doc.BasicInfo.Store,
			InterviewDate:      doc.BasicInfo.InterviewDate,
			InterviewerName:    doc.BasicInfo.InterviewerName,
			InterviewType:      interviewType,
			VisaStatus:         doc.BasicInfo.VisaStatus,
			VisaExpiry:         doc.BasicInfo.VisaExpiry,
			Contact:            doc.BasicInfo.Contact,
			HasSushiExperience: doc.BasicInfo.HasSushiExperience,
		},
		Answers:          answers,
		Acknowledgements: acks,
		AISummary:        doc.AISummary,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.Resume != nil {
		record.Resume = &domain.Resume{FileName: doc.Resume.FileName, DataURL: doc.Resume.DataURL}
	}
	return record
}

// FailedNotificationRepository は送信できなかった通知を保存する。
type FailedNotificationRepository struct {
	collection *mongo.Collection
}

func NewFailedNotificationRepository(db *mongo.Database, collectionName string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: db.Collection(collectionName)}
}

// Record stores a pending failed notification for later redelivery.
func (r *FailedNotificationRepository) Record(ctx context.Context, target string, payload map[string]string, cause error, attempts int) error {
	now := time.Now().UTC()
	doc := FailedNotificationDocument{
		Target:      target,
		Payload:     payload,
		Error:       cause.Error(),
		Attempts:    attempts,
		Status:      "pending",
		CreatedAt:   now,
		LastTriedAt: now,
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}
