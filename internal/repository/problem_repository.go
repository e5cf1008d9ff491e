package repository

import (
	"github.com/lshigami/PrepDeck/internal/model"
	"gorm.io/gorm"
)

type ProblemRepository interface {
	Create(problem *model.CodingProblem) error
	FindByIDWithSampleTests(id uint) (*model.CodingProblem, error)
	FindAllWithSampleTests() ([]model.CodingProblem, error)
}

type problemRepository struct {
	db *gorm.DB
}

func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(problem *model.CodingProblem) error {
	// sample tests are created through the association
	return r.db.Create(problem).Error
}

func orderedSampleTests(db *gorm.DB) *gorm.DB {
	return db.Order("sample_tests.position ASC")
}

func (r *problemRepository) FindByIDWithSampleTests(id uint) (*model.CodingProblem, error) {
	var problem model.CodingProblem
	err := r.db.Preload("SampleTests", orderedSampleTests).First(&problem, id).Error
	return &problem, err
}

func (r *problemRepository) FindAllWithSampleTests() ([]model.CodingProblem, error) {
	var problems []model.CodingProblem
	err := r.db.Preload("SampleTests", orderedSampleTests).Order("coding_problems.id ASC").Find(&problems).Error
	return problems, err
}
