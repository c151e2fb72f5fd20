package permission

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/motorlot/dealerd/internal"
)

func TestPermission(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Permission Module Suite")
}

type mockPermissionRepository struct {
	grants        map[int64]map[string]bool
	returnError   bool
	errorToReturn error
}

func newMockPermissionRepository() *mockPermissionRepository {
	return &mockPermissionRepository{
		grants: map[int64]map[string]bool{
			2: {SellVehicle: true, SearchVehicles: true, AddVehicle: false},
		},
	}
}

func (m *mockPermissionRepository) GetGrants(userID int64) (map[string]bool, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	out := make(map[string]bool)
	for name, on := range m.grants[userID] {
		out[name] = on
	}
	return out, nil
}

func (m *mockPermissionRepository) ReplaceGrants(userID int64, enabled []string) error {
	if m.returnError {
		return m.errorToReturn
	}
	next := make(map[string]bool)
	for _, name := range enabled {
		next[name] = true
	}
	m.grants[userID] = next
	return nil
}

var _ = ginkgo.Describe("PermissionService", func() {
	var (
		service  *Service
		mockRepo *mockPermissionRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockPermissionRepository()
		service = NewService(mockRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.Describe("Load", func() {
		ginkgo.It("should resolve stored grants and fall back to the default", func() {
			set, err := service.Load(2, false)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(set.Has(SellVehicle)).To(gomega.BeTrue())
			gomega.Expect(set.Has(AddVehicle)).To(gomega.BeFalse())
			gomega.Expect(set.Has(ManageUsers)).To(gomega.BeFalse())
		})

		ginkgo.It("should default open when asked to", func() {
			set, err := service.Load(99, true)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			for _, name := range Vocabulary() {
				gomega.Expect(set.Has(name)).To(gomega.BeTrue())
			}
		})

		ginkgo.It("should wrap repository failures", func() {
			mockRepo.returnError = true
			mockRepo.errorToReturn = errors.New("store closed")

			_, err := service.Load(2, false)

			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("load permissions")))
		})
	})

	ginkgo.Describe("Replace", func() {
		ginkgo.It("should swap the full set for the desired one", func() {
			err := service.Replace(2, map[string]bool{
				ManageUsers:      true,
				ViewSalesHistory: true,
				SellVehicle:      false,
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			set, err := service.Load(2, false)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(set.Enabled()).To(gomega.ConsistOf(ManageUsers, ViewSalesHistory))
			gomega.Expect(set.Has(SellVehicle)).To(gomega.BeFalse())
		})

		ginkgo.It("should drop grants omitted from the desired map", func() {
			err := service.Replace(2, map[string]bool{AddVehicle: true})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			set, _ := service.Load(2, false)
			gomega.Expect(set.Enabled()).To(gomega.ConsistOf(AddVehicle))
		})

		ginkgo.It("should reject names outside the vocabulary", func() {
			err := service.Replace(2, map[string]bool{"LAUNCH_ROCKETS": true})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeUnknownPermission))

			set, _ := service.Load(2, false)
			gomega.Expect(set.Has(SellVehicle)).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("Set", func() {
	ginkgo.It("should report the effective state over the whole vocabulary", func() {
		set := NewSet(map[string]bool{SellVehicle: true}, false)

		m := set.Map()
		gomega.Expect(m).To(gomega.HaveLen(len(Vocabulary())))
		gomega.Expect(m[SellVehicle]).To(gomega.BeTrue())
		gomega.Expect(m[ManageUsers]).To(gomega.BeFalse())
	})

	ginkgo.It("should tolerate a nil grant map", func() {
		set := NewSet(nil, false)

		gomega.Expect(set.Has(SellVehicle)).To(gomega.BeFalse())
		gomega.Expect(set.Enabled()).To(gomega.BeEmpty())
	})
})
