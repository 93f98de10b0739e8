package form

import (
	"devevents/src-server/model"
)

// SelectImage makes file the draft's image, dropping any previous one, and
// starts decoding its preview in the background. It returns before the
// preview is ready; only the decode of the latest selection may set it.
func (s *Session) SelectImage(file model.ImageFile) {
	var seq uint64
	s.update(func() bool {
		s.imageSeq++
		seq = s.imageSeq
		s.draft.Image = &file
		return true
	})

	s.decodes.Add(1)
	go func() {
		defer s.decodes.Done()
		preview, err := s.decoder.Decode(s.ctx, file)
		if err != nil {
			s.mu.Lock()
			logger := s.logger
			s.mu.Unlock()
			logger.Warn("can't decode image preview", "file", file.Name, "error", err)
			return
		}
		s.update(func() bool {
			if seq != s.imageSeq {
				return false
			}
			s.draft.ImagePreview = preview
			return true
		})
	}()
}

// WaitImage blocks until every started preview decode has finished.
func (s *Session) WaitImage() {
	s.decodes.Wait()
}
